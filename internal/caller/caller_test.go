package caller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromHeaders_ForwardedFor(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/inference/asr", nil)
	r.Header.Set(HeaderForwardedFor, "203.0.113.7, 10.0.0.1")
	r.Header.Set(HeaderAPIKeyID, "key-42")
	r.Header.Set(HeaderDataTracking, "true")

	c := FromHeaders(r.Header.Get, r.RemoteAddr)

	assert.Equal(t, Caller{APIKeyID: "key-42", IP: "203.0.113.7", DataTracking: true}, c)
}

func TestFromHeaders_RemoteAddr(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/inference/asr", nil)
	r.RemoteAddr = "192.0.2.1:5050"

	c := FromHeaders(r.Header.Get, r.RemoteAddr)

	assert.Equal(t, "192.0.2.1", c.IP)
	assert.False(t, c.DataTracking)
}

func TestFromHeaders(t *testing.T) {
	headers := map[string]string{HeaderAPIKeyID: "abc", HeaderDataTracking: "not-a-bool"}
	c := FromHeaders(func(k string) string { return headers[k] }, "unix-socket")

	assert.Equal(t, Caller{APIKeyID: "abc", IP: "unix-socket"}, c)
}

func TestContext(t *testing.T) {
	c := Caller{APIKeyID: "abc", IP: "192.0.2.1", DataTracking: true}

	assert.Equal(t, c, FromContext(WithCaller(context.Background(), c)))
	assert.Equal(t, Caller{}, FromContext(context.Background()))
}
