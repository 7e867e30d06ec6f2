package auth

import "context"

type ctxKey struct{}

// Identity is the caller's bearer token and the subject it names.
type Identity struct {
	Token   string
	Subject string
	Email   string
	Name    string
}

// WithIdentity stores id on the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IdentityFromContext returns the identity set by WithIdentity, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok && id.Token != ""
}

// RequestTokens supplies the bearer token of the request being served.
// An anonymous request yields an empty token and no error.
type RequestTokens struct{}

// Token returns the caller's bearer token or "".
func (RequestTokens) Token(ctx context.Context) (string, error) {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return "", nil
	}
	return id.Token, nil
}
