package account

import "context"

type contextKey struct{}

// NewContext returns a copy of ctx carrying dir.
func NewContext(ctx context.Context, dir *Directory) context.Context {
	return context.WithValue(ctx, contextKey{}, dir)
}

// FromContext returns the directory installed by NewContext.
// It panics when none is installed.
func FromContext(ctx context.Context) *Directory {
	dir, ok := ctx.Value(contextKey{}).(*Directory)
	if !ok || dir == nil {
		panic("account: no directory installed in context")
	}
	return dir
}
