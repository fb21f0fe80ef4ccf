// Package triton dispatches inference requests to KServe v2 compatible
// backends (Triton Inference Server) over gRPC.
package triton

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/backoff"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/ekisa-team/lingua/internal/apperr"
	"github.com/ekisa-team/lingua/internal/backend"
)

// Client is a backend.Dispatcher holding one gRPC connection per endpoint.
type Client struct {
	conns          map[string]*grpc.ClientConn
	dialOptions    []grpc.DialOption
	maxMessageSize int
	mu             sync.RWMutex
}

var _ backend.Dispatcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithMaxMessageSize sets the maximum send and receive message size.
func WithMaxMessageSize(n int) Option {
	return func(c *Client) {
		c.maxMessageSize = n
	}
}

// WithDialOptions appends extra gRPC dial options to every connection.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(c *Client) {
		c.dialOptions = append(c.dialOptions, opts...)
	}
}

// WithConnectTimeout bounds how long a connection attempt may back off
// before the first RPC on it fails.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.dialOptions = append(c.dialOptions, grpc.WithConnectParams(grpc.ConnectParams{Backoff: backoff.DefaultConfig, MinConnectTimeout: d}))
		}
	}
}

// NewClient creates a new client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		conns:          make(map[string]*grpc.ClientConn),
		maxMessageSize: 64 << 20,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Dispatch executes a ModelInfer call against req.Endpoint.
func (c *Client) Dispatch(ctx context.Context, req *backend.Request) (*backend.Response, error) {
	conn, err := c.conn(req.Endpoint)
	if err != nil {
		return nil, apperr.Server(apperr.KindBackendUnavailable, "failed to connect to backend", err)
	}

	if req.APIKey != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+req.APIKey)
	}

	start := time.Now()
	reply := dynamicpb.NewMessage(inferResponseDesc)
	if err := conn.Invoke(ctx, modelInferMethod, newInferRequest(req), reply); err != nil {
		slog.Error("Inference request failed", "endpoint", req.Endpoint, "model", req.Model, "error", err)
		return nil, apperr.Server(apperr.KindBackendUnavailable, "inference request failed", err)
	}

	resp, err := parseInferResponse(reply)
	if err != nil {
		return nil, apperr.Server(apperr.KindBackendUnavailable, "malformed inference response", err)
	}

	slog.Debug("Inference request completed",
		"endpoint", req.Endpoint,
		"model", req.Model,
		"id", req.ID,
		"outputs", len(resp.Outputs),
		"elapsed", time.Since(start),
	)

	return resp, nil
}

// conn returns the connection for endpoint, creating it on first use.
func (c *Client) conn(endpoint string) (*grpc.ClientConn, error) {
	c.mu.RLock()
	conn, ok := c.conns[endpoint]
	c.mu.RUnlock()
	if ok {
		return conn, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if conn, ok := c.conns[endpoint]; ok {
		return conn, nil
	}

	target, creds := parseEndpoint(endpoint)
	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(creds),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(c.maxMessageSize),
			grpc.MaxCallSendMsgSize(c.maxMessageSize),
		),
	}, c.dialOptions...)

	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("triton: dial %s: %w", endpoint, err)
	}

	c.conns[endpoint] = conn
	slog.Info("Backend connection created", "endpoint", endpoint, "target", target)

	return conn, nil
}

// Close closes all backend connections.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	for endpoint, conn := range c.conns {
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("triton: close %s: %w", endpoint, err)
		}
		delete(c.conns, endpoint)
	}

	return firstErr
}

// parseEndpoint turns a service endpoint into a gRPC target. An https://
// scheme selects TLS; http:// and bare targets connect without it.
func parseEndpoint(endpoint string) (string, credentials.TransportCredentials) {
	if rest, ok := strings.CutPrefix(endpoint, "https://"); ok {
		host := strings.TrimRight(rest, "/")
		if !strings.Contains(host, ":") {
			host += ":443"
		}
		return host, credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	if rest, ok := strings.CutPrefix(endpoint, "http://"); ok {
		host := strings.TrimRight(rest, "/")
		if !strings.Contains(host, ":") {
			host += ":80"
		}
		return host, insecure.NewCredentials()
	}

	return endpoint, insecure.NewCredentials()
}
