package middleware

import (
	"context"
	"net"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

type clientMetaKey struct{}

// ClientMeta is what a request tells about its client.
type ClientMeta struct {
	IP        string
	UserAgent string
	Referrer  string
}

// ContextWithClientMeta adds client metadata to ctx.
func ContextWithClientMeta(ctx context.Context, meta ClientMeta) context.Context {
	return context.WithValue(ctx, clientMetaKey{}, meta)
}

// ClientMetaFromContext returns the metadata stored by RequestMeta, or the zero value.
func ClientMetaFromContext(ctx context.Context) ClientMeta {
	if v, ok := ctx.Value(clientMetaKey{}).(ClientMeta); ok {
		return v
	}

	return ClientMeta{}
}

// RequestMeta stores client IP, user agent and referrer in the request context.
func RequestMeta(_ huma.API) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		meta := ClientMeta{
			IP:        ClientIP(ctx),
			UserAgent: ctx.Header("User-Agent"),
			Referrer:  ctx.Header("Referer"),
		}

		next(huma.WithContext(ctx, ContextWithClientMeta(ctx.Context(), meta)))
	}
}

// ClientIP returns the originating client address: the first X-Forwarded-For
// entry, then X-Real-IP, then the connection's remote address.
func ClientIP(ctx huma.Context) string {
	if xff := ctx.Header("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")

		return strings.TrimSpace(first)
	}

	if xri := ctx.Header("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	addr := ctx.RemoteAddr()

	ip, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}

	return ip
}
