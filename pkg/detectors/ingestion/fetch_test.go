package ingestion_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/NeuralTrust/ImageGuard/pkg/detectors/ingestion"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/httpx/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestIsRemote(t *testing.T) {
	assert.True(t, ingestion.IsRemote("https://cdn.example.com/a.png"))
	assert.True(t, ingestion.IsRemote("http://cdn.example.com/a"))
	assert.False(t, ingestion.IsRemote("/tmp/a.png"))
	assert.False(t, ingestion.IsRemote("images/a.png"))
	assert.False(t, ingestion.IsRemote("ftp://cdn.example.com/a.png"))
}

func TestFetcher_LocalPathPassesThrough(t *testing.T) {
	client := new(mocks.MockHTTPClient)
	f := ingestion.NewFetcher(client, t.TempDir())

	p, cleanup, err := f.Resolve(context.Background(), "images/local.png")
	require.NoError(t, err)
	require.NotNil(t, cleanup)
	cleanup()
	assert.Equal(t, "images/local.png", p)
	client.AssertNotCalled(t, "Do", mock.Anything)
}

func TestFetcher_DownloadsRemoteImage(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantExt string
	}{
		{"keeps known extension", "https://cdn.example.com/photos/cat.PNG?size=large", ".png"},
		{"falls back to jpg", "https://cdn.example.com/render?id=42", ".jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(mocks.MockHTTPClient)
			client.On("Do", mock.MatchedBy(func(r *http.Request) bool {
				return r.Method == http.MethodGet && r.URL.String() == tt.url
			})).Return(&http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader("image-bytes")),
			}, nil)

			dir := t.TempDir()
			f := ingestion.NewFetcher(client, dir)
			p, cleanup, err := f.Resolve(context.Background(), tt.url)
			require.NoError(t, err)

			assert.Equal(t, dir, filepath.Dir(p))
			assert.Equal(t, tt.wantExt, filepath.Ext(p))
			data, err := os.ReadFile(p)
			require.NoError(t, err)
			assert.Equal(t, "image-bytes", string(data))

			cleanup()
			assert.NoFileExists(t, p)
			client.AssertExpectations(t)
		})
	}
}

func TestFetcher_Failures(t *testing.T) {
	t.Run("transport error", func(t *testing.T) {
		client := new(mocks.MockHTTPClient)
		client.On("Do", mock.Anything).Return(nil, errors.New("dial tcp: refused"))

		_, _, err := ingestion.NewFetcher(client, t.TempDir()).Resolve(context.Background(), "https://x.test/a.png")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dial tcp: refused")
	})

	t.Run("non 200", func(t *testing.T) {
		client := new(mocks.MockHTTPClient)
		client.On("Do", mock.Anything).Return(&http.Response{
			StatusCode: http.StatusNotFound,
			Body:       io.NopCloser(strings.NewReader("")),
		}, nil)

		_, _, err := ingestion.NewFetcher(client, t.TempDir()).Resolve(context.Background(), "https://x.test/a.png")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 404")
	})
}

func TestFetcher_SizeLimit(t *testing.T) {
	t.Run("body over limit", func(t *testing.T) {
		dir := t.TempDir()
		client := mocks.NewMockHTTPClient(t)
		client.On("Do", mock.Anything).Return(mocks.Response(http.StatusOK, "0123456789abcdef"), nil)

		f := ingestion.NewFetcher(client, dir, ingestion.WithMaxBytes(8))
		_, _, err := f.Resolve(context.Background(), "https://x.test/big.png")
		require.ErrorIs(t, err, ingestion.ErrImageTooLarge)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("declared length over limit", func(t *testing.T) {
		resp := mocks.Response(http.StatusOK, "tiny")
		resp.ContentLength = 1 << 30
		client := mocks.NewMockHTTPClient(t)
		client.On("Do", mock.Anything).Return(resp, nil)

		f := ingestion.NewFetcher(client, t.TempDir(), ingestion.WithMaxBytes(8))
		_, _, err := f.Resolve(context.Background(), "https://x.test/big.png")
		require.ErrorIs(t, err, ingestion.ErrImageTooLarge)
	})

	t.Run("body at limit", func(t *testing.T) {
		client := mocks.NewMockHTTPClient(t)
		client.On("Do", mock.Anything).Return(mocks.Response(http.StatusOK, "01234567"), nil)

		f := ingestion.NewFetcher(client, t.TempDir(), ingestion.WithMaxBytes(8))
		p, cleanup, err := f.Resolve(context.Background(), "https://x.test/ok.png")
		require.NoError(t, err)
		defer cleanup()
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Equal(t, "01234567", string(data))
	})
}

func TestFetcher_LocalRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "cat.png"), []byte("x"), 0600))
	outside := filepath.Join(t.TempDir(), "secret.png")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0600))

	f := ingestion.NewFetcher(nil, t.TempDir(), ingestion.WithLocalRoot(root))

	p, _, err := f.Resolve(context.Background(), "cat.png")
	require.NoError(t, err)
	assert.Equal(t, "cat.png", filepath.Base(p))

	_, _, err = f.Resolve(context.Background(), filepath.Join(root, "cat.png"))
	require.NoError(t, err)

	for _, input := range []string{outside, "../secret.png", "/etc/passwd"} {
		_, _, err := f.Resolve(context.Background(), input)
		assert.ErrorIs(t, err, ingestion.ErrLocalPathNotAllowed, input)
	}
}

func TestFetcher_EmptyLocalRootRejectsPaths(t *testing.T) {
	f := ingestion.NewFetcher(nil, t.TempDir(), ingestion.WithLocalRoot(""))

	_, _, err := f.Resolve(context.Background(), "images/local.png")
	require.ErrorIs(t, err, ingestion.ErrLocalPathNotAllowed)
}
