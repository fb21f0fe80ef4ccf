// Package caller carries the authenticated caller's identity through a request context.
package caller

import (
	"context"
	"net"
	"strconv"
	"strings"
)

// Headers set by the upstream authentication layer.
const (
	HeaderForwardedFor = "X-Forwarded-For"
	HeaderAPIKeyID     = "X-Api-Key-Id"
	HeaderDataTracking = "X-Api-Key-Data-Tracking"
)

// Caller identifies who issued a request and whether their key permits data tracking.
type Caller struct {
	APIKeyID     string
	IP           string
	DataTracking bool
}

type contextKey struct{}

// WithCaller returns a copy of ctx carrying c.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext returns the caller stored in ctx, or the zero Caller.
func FromContext(ctx context.Context) Caller {
	c, _ := ctx.Value(contextKey{}).(Caller)
	return c
}

// FromHeaders builds the caller from header values and the peer address.
// The first X-Forwarded-For entry wins over the peer address.
func FromHeaders(header func(string) string, remoteAddr string) Caller {
	ip := header(HeaderForwardedFor)
	if ip != "" {
		ip = strings.TrimSpace(strings.Split(ip, ",")[0])
	} else if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		ip = host
	} else {
		ip = remoteAddr
	}

	tracking, _ := strconv.ParseBool(header(HeaderDataTracking))

	return Caller{
		APIKeyID:     header(HeaderAPIKeyID),
		IP:           ip,
		DataTracking: tracking,
	}
}
