package mocks

import (
	"io"
	"net/http"
	"strings"

	"github.com/stretchr/testify/mock"
)

// MockHTTPClient stands in for httpx.Client. Zero value is usable;
// NewMockHTTPClient also asserts expectations on cleanup.
type MockHTTPClient struct {
	mock.Mock
}

func NewMockHTTPClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockHTTPClient {
	m := &MockHTTPClient{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	if fn, ok := args.Get(0).(func(*http.Request) (*http.Response, error)); ok {
		return fn(req)
	}
	var resp *http.Response
	if v := args.Get(0); v != nil {
		resp = v.(*http.Response)
	}
	return resp, args.Error(1)
}

// Response builds a canned reply with the given status and body.
func Response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}
