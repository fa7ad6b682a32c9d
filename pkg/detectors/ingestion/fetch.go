package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/NeuralTrust/ImageGuard/pkg/infra/httpx"
	"github.com/google/uuid"
)

const (
	fallbackExtension = ".jpg"
	DefaultMaxBytes   = 20 << 20
)

var (
	ErrImageTooLarge       = errors.New("image exceeds the download size limit")
	ErrLocalPathNotAllowed = errors.New("local image path not allowed")
)

// Fetcher resolves batch inputs to local files. Plain paths pass through,
// http(s) URLs are downloaded into Dir.
type Fetcher struct {
	client        httpx.Client
	dir           string
	maxBytes      int64
	restrictLocal bool
	localRoot     string
}

type FetcherOption func(*Fetcher)

// WithMaxBytes caps downloads. Values <= 0 keep DefaultMaxBytes.
func WithMaxBytes(n int64) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// WithLocalRoot only lets plain paths through when they resolve under root.
// Relative paths are joined to root. An empty root rejects every plain path.
func WithLocalRoot(root string) FetcherOption {
	return func(f *Fetcher) {
		f.restrictLocal = true
		f.localRoot = root
	}
}

func NewFetcher(client httpx.Client, dir string, opts ...FetcherOption) *Fetcher {
	if dir == "" {
		dir = os.TempDir()
	}
	f := &Fetcher{client: client, dir: dir, maxBytes: DefaultMaxBytes}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func IsRemote(input string) bool {
	u, err := url.Parse(input)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Resolve returns the local path for input. The cleanup func removes any
// downloaded file and is never nil.
func (f *Fetcher) Resolve(ctx context.Context, input string) (string, func(), error) {
	noop := func() {}
	if !IsRemote(input) {
		local, err := f.local(input)
		if err != nil {
			return "", noop, err
		}
		return local, noop, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, input, nil)
	if err != nil {
		return "", noop, fmt.Errorf("invalid image url: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", noop, fmt.Errorf("failed to download %s: %w", input, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", noop, fmt.Errorf("failed to download %s: status %d", input, resp.StatusCode)
	}
	if resp.ContentLength > f.maxBytes {
		return "", noop, fmt.Errorf("failed to download %s: %w (%d > %d bytes)", input, ErrImageTooLarge, resp.ContentLength, f.maxBytes)
	}

	if err := os.MkdirAll(f.dir, 0750); err != nil {
		return "", noop, err
	}
	out := filepath.Join(f.dir, uuid.NewString()+remoteExtension(input))
	file, err := os.OpenFile(filepath.Clean(out), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return "", noop, err
	}
	n, err := io.Copy(file, io.LimitReader(resp.Body, f.maxBytes+1))
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	cleanup := func() { _ = os.Remove(out) }
	if err != nil {
		cleanup()
		return "", noop, fmt.Errorf("failed to store %s: %w", input, err)
	}
	if n > f.maxBytes {
		cleanup()
		return "", noop, fmt.Errorf("failed to download %s: %w (limit %d bytes)", input, ErrImageTooLarge, f.maxBytes)
	}
	return out, cleanup, nil
}

func (f *Fetcher) local(input string) (string, error) {
	if !f.restrictLocal {
		return input, nil
	}
	if f.localRoot == "" {
		return "", fmt.Errorf("%w: %s", ErrLocalPathNotAllowed, input)
	}
	root, err := filepath.Abs(f.localRoot)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	target := input
	if !filepath.IsAbs(target) {
		target = filepath.Join(root, target)
	}
	target = filepath.Clean(target)
	if resolved, err := filepath.EvalSymlinks(target); err == nil {
		target = resolved
	}
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s is outside %s", ErrLocalPathNotAllowed, input, f.localRoot)
	}
	return target, nil
}

func remoteExtension(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return fallbackExtension
	}
	ext := strings.ToLower(path.Ext(u.Path))
	for _, allowed := range DefaultAllowedExtensions {
		if ext == allowed {
			return ext
		}
	}
	return fallbackExtension
}
