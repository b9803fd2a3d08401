package authflow

import "context"

type clientIPContextKey struct{}
type linkBaseURLContextKey struct{}

// WithClientIP attaches the caller’s IP address to ctx. The Engine records it
// in audit events for every authentication decision.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// WithLinkBaseURL attaches the public base URL of the current request to ctx.
// Confirmation and reset links in outbound mail are built against it, so the
// links match whatever host and scheme the client actually reached. When
// absent, Config.Mail.LinkBaseURL is used.
func WithLinkBaseURL(ctx context.Context, baseURL string) context.Context {
	return context.WithValue(ctx, linkBaseURLContextKey{}, baseURL)
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}

func linkBaseURLFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	baseURL, _ := ctx.Value(linkBaseURLContextKey{}).(string)
	return baseURL
}
