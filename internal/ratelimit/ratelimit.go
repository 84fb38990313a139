// Package ratelimit provides pluggable allow/deny verdict providers. The
// draw engine only consumes the verdict; the window bookkeeping lives behind
// this interface so deployments can swap the distributed Redis limiter for
// the in-process one.
package ratelimit

import "context"

// Limiter answers whether the caller identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Func adapts a function to the Limiter interface.
type Func func(ctx context.Context, key string) (bool, error)

func (f Func) Allow(ctx context.Context, key string) (bool, error) {
	return f(ctx, key)
}
