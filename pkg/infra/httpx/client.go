package httpx

import "net/http"

// Client is the subset of *http.Client used by remote detectors.
type Client interface {
	Do(req *http.Request) (*http.Response, error)
}
