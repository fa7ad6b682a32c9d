package http

import "context"

// ImageResolver turns a request image reference into a local file. The
// returned cleanup is never nil.
type ImageResolver interface {
	Resolve(ctx context.Context, input string) (string, func(), error)
}
