package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

var proxyNet = netip.MustParsePrefix("10.0.0.0/8")

func forwardedRequest(remoteAddr, xff, xRealIP string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = remoteAddr
	if xff != "" {
		req.Header.Set("X-Forwarded-For", xff)
	}
	if xRealIP != "" {
		req.Header.Set("X-Real-Ip", xRealIP)
	}
	return req
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		trusted []netip.Prefix
		remote  string
		xff     string
		xRealIP string
		want    string
	}{
		{name: "untrusted peer ignores forwarded for", remote: "203.0.113.7:4000", xff: "1.2.3.4", want: "203.0.113.7"},
		{name: "untrusted peer ignores x-real-ip", remote: "203.0.113.7:4000", xRealIP: "1.2.3.4", want: "203.0.113.7"},
		{name: "no proxies configured", remote: "10.0.0.5:4000", xff: "1.2.3.4", want: "10.0.0.5"},
		{name: "trusted proxy forwards client", trusted: []netip.Prefix{proxyNet}, remote: "10.0.0.5:4000", xff: "1.2.3.4", want: "1.2.3.4"},
		{name: "client-supplied hops are skipped", trusted: []netip.Prefix{proxyNet}, remote: "10.0.0.5:4000", xff: "6.6.6.6, 1.2.3.4, 10.0.0.9", want: "1.2.3.4"},
		{name: "all hops trusted", trusted: []netip.Prefix{proxyNet}, remote: "10.0.0.5:4000", xff: "10.1.1.1, 10.0.0.9", want: "10.1.1.1"},
		{name: "malformed hop falls back to peer", trusted: []netip.Prefix{proxyNet}, remote: "10.0.0.5:4000", xff: "1.2.3.4, garbage", want: "10.0.0.5"},
		{name: "trusted proxy with x-real-ip", trusted: []netip.Prefix{proxyNet}, remote: "10.0.0.5:4000", xRealIP: "9.10.11.12", want: "9.10.11.12"},
		{name: "remote addr without port", remote: "192.168.1.1", want: "192.168.1.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := NewRateLimiter(rate.Limit(1), 1, tt.trusted...)
			assert.Equal(t, tt.want, rl.clientIP(forwardedRequest(tt.remote, tt.xff, tt.xRealIP)))
		})
	}
}

func TestLimit_RejectsAfterBurst(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(0.001), 2)
	h := rl.Limit(http.HandlerFunc(okHandler))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, forwardedRequest("10.0.0.1:1234", "", ""))
		codes = append(codes, rr.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// Another client has its own bucket.
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, forwardedRequest("10.0.0.2:1234", "", ""))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestLimit_SpoofedForwardedForSharesPeerBucket(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(0.001), 10)
	h := rl.Limit(http.HandlerFunc(okHandler))

	allowed := 0
	for i := 0; i < 1000; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, forwardedRequest("203.0.113.7:5555", fmt.Sprintf("198.51.%d.%d", i/256, i%256), ""))
		if rr.Code == http.StatusOK {
			allowed++
		}
	}
	assert.Equal(t, 10, allowed)
}

func TestLimit_TrustedProxySeparatesClients(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(0.001), 1, proxyNet)
	h := rl.Limit(http.HandlerFunc(okHandler))

	for _, client := range []string{"198.51.100.1", "198.51.100.2"} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, forwardedRequest("10.0.0.5:443", client, ""))
		assert.Equal(t, http.StatusOK, rr.Code, client)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, forwardedRequest("10.0.0.5:443", "198.51.100.1", ""))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
}
