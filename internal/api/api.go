// Package api contains one resource client per backend area. Clients only
// translate between calls and HTTP; they hold no state and never retry.
package api

import (
	"context"
	"net/url"
)

// Doer is the transport surface the resource clients need.
type Doer interface {
	Do(ctx context.Context, method, path string, in, out any) error
}

func escape(id string) string {
	return url.PathEscape(id)
}
