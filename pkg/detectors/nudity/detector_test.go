package nudity_test

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/NeuralTrust/ImageGuard/pkg/detectors/nudity"
	"github.com/NeuralTrust/ImageGuard/pkg/domain/moderation"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/httpx"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/httpx/mocks"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/providers"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

type stubBackend struct {
	verdict *nudity.Verdict
	err     error
	calls   int
}

func (s *stubBackend) Name() string             { return "stub" }
func (s *stubBackend) DefaultMinScore() float64 { return 0.3 }
func (s *stubBackend) Classify(context.Context, *providers.Image) (*nudity.Verdict, error) {
	s.calls++
	return s.verdict, s.err
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func writeImage(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(p, []byte{0xff, 0xd8, 0xff, 0xe0, 0, 0x10}, 0600))
	return p
}

func TestDetector_Evaluate(t *testing.T) {
	tests := []struct {
		name      string
		verdict   *nudity.Verdict
		wantLabel string
		wantCount int
		wantScore *float64
	}{
		{
			name:      "no detections",
			verdict:   &nudity.Verdict{},
			wantLabel: moderation.NudityLabelSafe,
		},
		{
			name: "below threshold",
			verdict: &nudity.Verdict{Detections: []moderation.Detection{
				moderation.NewDetection("FEMALE_BREAST_EXPOSED", 0.2, nil),
			}},
			wantLabel: moderation.NudityLabelSafe,
		},
		{
			name: "above threshold keeps only qualifying regions",
			verdict: &nudity.Verdict{Detections: []moderation.Detection{
				moderation.NewDetection("FEMALE_BREAST_EXPOSED", 0.83, []float64{1, 2, 3, 4}),
				moderation.NewDetection("FACE_FEMALE", 0.1, nil),
			}},
			wantLabel: moderation.NudityLabelUnsafe,
			wantCount: 1,
			wantScore: ptr(0.83),
		},
		{
			name:      "flagged without scores",
			verdict:   &nudity.Verdict{Flagged: true},
			wantLabel: moderation.NudityLabelUnsafe,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := nudity.NewDetector(testLogger(), &stubBackend{verdict: tt.verdict}, nil, 0)
			res, err := d.Detect(context.Background(), writeImage(t))
			require.NoError(t, err)

			assert.Equal(t, moderation.StatusSuccess, res.Status)
			assert.Equal(t, moderation.KindStructured, res.Kind)
			assert.Equal(t, tt.wantLabel, res.Label)
			assert.Len(t, res.Detections, tt.wantCount)
			assert.Equal(t, tt.wantScore, res.UnsafeScore)
			assert.Equal(t, "stub", res.Provider)
		})
	}
}

func TestDetector_ExplicitMinScore(t *testing.T) {
	backend := &stubBackend{verdict: &nudity.Verdict{Detections: []moderation.Detection{
		moderation.NewDetection("BUTTOCKS_EXPOSED", 0.6, nil),
	}}}
	d := nudity.NewDetector(testLogger(), backend, nil, 0.7)

	res, err := d.Detect(context.Background(), writeImage(t))
	require.NoError(t, err)
	assert.Equal(t, moderation.NudityLabelSafe, res.Label)
}

func TestDetector_MissingImage(t *testing.T) {
	backend := &stubBackend{}
	d := nudity.NewDetector(testLogger(), backend, nil, 0)

	res, err := d.Detect(context.Background(), filepath.Join(t.TempDir(), "missing.jpg"))
	require.NoError(t, err)
	assert.Equal(t, moderation.StatusError, res.Status)
	assert.Contains(t, res.Message, "Image not found at:")
	assert.Zero(t, backend.calls)
}

func TestDetector_BreakerOpensOnFailures(t *testing.T) {
	backend := &stubBackend{err: errors.New("connection refused")}
	breaker := httpx.NewCircuitBreaker("nudity", time.Minute, 2)
	d := nudity.NewDetector(testLogger(), backend, breaker, 0)
	img := writeImage(t)

	for i := 0; i < 2; i++ {
		res, err := d.Detect(context.Background(), img)
		require.NoError(t, err)
		assert.Contains(t, res.Message, "connection refused")
	}

	res, err := d.Detect(context.Background(), img)
	require.NoError(t, err)
	assert.Equal(t, moderation.StatusError, res.Status)
	assert.Contains(t, res.Message, "circuit breaker is open")
	assert.Equal(t, 2, backend.calls)
}

func TestNudeNetBackend(t *testing.T) {
	var gotField bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		file, _, err := r.FormFile("file")
		if err == nil {
			gotField = true
			_ = file.Close()
		}
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		_, _ = gz.Write([]byte(`{"detections":[{"class":"FEMALE_GENITALIA_EXPOSED","score":0.91,"box":[10,20,30,40]},{"label":"FACE_FEMALE","score":0.4}]}`))
		_ = gz.Close()
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(buf.Bytes())
	}))
	defer server.Close()

	backend := nudity.NewNudeNetBackend(&fasthttp.Client{}, server.URL+"/detect", 5*time.Second)
	verdict, err := backend.Classify(context.Background(), &providers.Image{Data: []byte("jpg"), MimeType: "image/jpeg"})
	require.NoError(t, err)

	assert.True(t, gotField)
	assert.False(t, verdict.Flagged)
	require.Len(t, verdict.Detections, 2)
	assert.Equal(t, "FEMALE_GENITALIA_EXPOSED", verdict.Detections[0].Label)
	assert.Equal(t, 0.91, *verdict.Detections[0].Score)
	assert.Equal(t, []float64{10, 20, 30, 40}, verdict.Detections[0].Box)
	assert.Equal(t, "FACE_FEMALE", verdict.Detections[1].Label)
}

func TestNudeNetBackend_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("model loading"))
	}))
	defer server.Close()

	backend := nudity.NewNudeNetBackend(nil, server.URL, time.Second)
	_, err := backend.Classify(context.Background(), &providers.Image{Data: []byte("x"), MimeType: "image/png"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}

func TestOpenAIBackend(t *testing.T) {
	client := new(mocks.MockHTTPClient)
	client.On("Do", mock.MatchedBy(func(r *http.Request) bool {
		var body map[string]any
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		return r.URL.String() == nudity.OpenAIModerationURL &&
			r.Header.Get("Authorization") == "Bearer sk-test" &&
			body["model"] == nudity.DefaultModerationModel &&
			strings.Contains(string(raw), "data:image/png;base64,")
	})).Return(&http.Response{
		StatusCode: http.StatusOK,
		Body: io.NopCloser(strings.NewReader(`{"id":"modr-1","results":[{"flagged":true,
			"categories":{"sexual":true,"sexual/minors":false,"violence":false},
			"category_scores":{"sexual":0.97,"sexual/minors":0.01,"violence":0.2}}]}`)),
	}, nil)

	backend := nudity.NewOpenAIBackend(client, "sk-test", "", "")
	assert.Equal(t, 0.5, backend.DefaultMinScore())

	verdict, err := backend.Classify(context.Background(), &providers.Image{Data: []byte("png"), MimeType: "image/png"})
	require.NoError(t, err)
	assert.True(t, verdict.Flagged)
	require.Len(t, verdict.Detections, 2)
	assert.Equal(t, "sexual", verdict.Detections[0].Label)
	assert.Equal(t, 0.97, *verdict.Detections[0].Score)
	assert.Equal(t, "sexual/minors", verdict.Detections[1].Label)
	client.AssertExpectations(t)
}

func TestOpenAIBackend_APIError(t *testing.T) {
	client := new(mocks.MockHTTPClient)
	client.On("Do", mock.Anything).Return(&http.Response{
		StatusCode: http.StatusUnauthorized,
		Body:       io.NopCloser(strings.NewReader(`{"error":"invalid key"}`)),
	}, nil)

	_, err := nudity.NewOpenAIBackend(client, "bad", "", "").Classify(context.Background(), &providers.Image{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid key")
}

func TestNewBackend(t *testing.T) {
	_, err := nudity.NewBackend(nudity.Config{Backend: nudity.BackendNudeNet}, nil, nil)
	assert.ErrorContains(t, err, "endpoint is required")

	_, err = nudity.NewBackend(nudity.Config{Backend: nudity.BackendOpenAI}, nil, nil)
	assert.ErrorContains(t, err, "api key")

	_, err = nudity.NewBackend(nudity.Config{Backend: "rekognition"}, nil, nil)
	assert.ErrorContains(t, err, "unsupported nudity backend")

	b, err := nudity.NewBackend(nudity.Config{Backend: nudity.BackendNudeNet, Endpoint: "http://nudenet:8080/detect"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, nudity.BackendNudeNet, b.Name())
}

func ptr(f float64) *float64 { return &f }
