package nudity

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/NeuralTrust/ImageGuard/pkg/domain/moderation"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/httpx"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/providers"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fastjson"
)

const defaultTimeout = 30 * time.Second

var parserPool fastjson.ParserPool

type nudenetBackend struct {
	client   *fasthttp.Client
	endpoint string
	timeout  time.Duration
}

// NewNudeNetBackend posts the image as multipart field "file" to a
// NudeNet-compatible service.
func NewNudeNetBackend(client *fasthttp.Client, endpoint string, timeout time.Duration) Backend {
	if client == nil {
		client = &fasthttp.Client{}
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &nudenetBackend{client: client, endpoint: endpoint, timeout: timeout}
}

func (b *nudenetBackend) Name() string {
	return BackendNudeNet
}

// Any region NudeNet reports counts.
func (b *nudenetBackend) DefaultMinScore() float64 {
	return 0
}

func (b *nudenetBackend) Classify(ctx context.Context, image *providers.Image) (*Verdict, error) {
	body, contentType, err := multipartBody(image)
	if err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(b.endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType(contentType)
	req.Header.Set(fasthttp.HeaderAcceptEncoding, "gzip, br, zstd")
	req.SetBodyRaw(body)

	deadline := time.Now().Add(b.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := b.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("nudenet request failed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, _, err := httpx.DecodeChain(resp, resp.Body())
	if err != nil {
		return nil, fmt.Errorf("nudenet response: %w", err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("nudenet returned status %d: %s", resp.StatusCode(), truncate(raw, 256))
	}

	return parseDetections(raw)
}

// parseDetections reads {"detections":[{"class","score","box"}]}. Older
// NudeNet builds name the class field "label".
func parseDetections(raw []byte) (*Verdict, error) {
	parser := parserPool.Get()
	defer parserPool.Put(parser)

	v, err := parser.ParseBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid nudenet response: %w", err)
	}

	verdict := &Verdict{}
	for _, d := range v.GetArray("detections") {
		label := string(d.GetStringBytes("class"))
		if label == "" {
			label = string(d.GetStringBytes("label"))
		}
		det := moderation.Detection{Label: label}
		if sv := d.Get("score"); sv != nil && sv.Type() == fastjson.TypeNumber {
			score := sv.GetFloat64()
			det.Score = &score
		}
		for _, b := range d.GetArray("box") {
			det.Box = append(det.Box, b.GetFloat64())
		}
		verdict.Detections = append(verdict.Detections, det)
	}
	return verdict, nil
}

func multipartBody(image *providers.Image) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "image"+extensionFor(image.MimeType))
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(image.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func extensionFor(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
