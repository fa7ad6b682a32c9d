package httpx

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
	"github.com/valyala/fasthttp"
)

type decoder func(body []byte) ([]byte, error)

var decoders = map[string]decoder{
	"br":      decodeBrotli,
	"gzip":    decodeGzip,
	"zstd":    decodeZstd,
	"deflate": decodeDeflate,
}

// DecodeChain undoes the Content-Encoding of a fasthttp response body.
// It returns the decoded body and whether anything was decoded.
func DecodeChain(resp *fasthttp.Response, body []byte) ([]byte, bool, error) {
	return Decode(string(resp.Header.Peek(fasthttp.HeaderContentEncoding)), body)
}

// Decode undoes a Content-Encoding value such as "gzip, br". Encodings are
// removed in reverse order of application.
func Decode(contentEncoding string, body []byte) ([]byte, bool, error) {
	if contentEncoding == "" {
		return body, false, nil
	}
	encodings := strings.Split(contentEncoding, ",")
	changed := false
	for i := len(encodings) - 1; i >= 0; i-- {
		name := strings.TrimSpace(strings.ToLower(encodings[i]))
		switch name {
		case "", "identity", "compress":
			continue
		}
		dec, ok := decoders[name]
		if !ok {
			return nil, false, fmt.Errorf("unsupported content-encoding: %q", encodings[i])
		}
		out, err := dec(body)
		if err != nil {
			return nil, false, fmt.Errorf("%s: %w", name, err)
		}
		body = out
		changed = true
	}
	return body, changed, nil
}

func decodeBrotli(body []byte) ([]byte, error) {
	return io.ReadAll(brotli.NewReader(bytes.NewReader(body)))
}

func decodeGzip(body []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	return readAndClose(r)
}

func decodeZstd(body []byte) ([]byte, error) {
	r, err := zstd.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// decodeDeflate accepts zlib-wrapped data and falls back to raw DEFLATE.
func decodeDeflate(body []byte) ([]byte, error) {
	if r, err := zlib.NewReader(bytes.NewReader(body)); err == nil {
		return readAndClose(r)
	}
	return readAndClose(flate.NewReader(bytes.NewReader(body)))
}

func readAndClose(r io.ReadCloser) ([]byte, error) {
	out, err := io.ReadAll(r)
	cerr := r.Close()
	if err != nil {
		return nil, err
	}
	return out, cerr
}
