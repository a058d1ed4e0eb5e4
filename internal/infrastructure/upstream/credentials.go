package upstream

import (
	"context"
	"strings"
)

// Credentials are the caller's own auth values, forwarded verbatim.
// The proxy never invents a token or role; empty values are not sent.
type Credentials struct {
	Token string
	Role  string
}

type credentialsKey struct{}

// WithCredentials stores the caller's credentials in ctx
func WithCredentials(ctx context.Context, creds Credentials) context.Context {
	return context.WithValue(ctx, credentialsKey{}, creds)
}

// CredentialsFromContext returns the credentials stored in ctx, if any
func CredentialsFromContext(ctx context.Context) Credentials {
	creds, _ := ctx.Value(credentialsKey{}).(Credentials)
	return creds
}

// BearerToken extracts the token from an Authorization header value.
// A value without the Bearer scheme is taken as the raw token.
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}
