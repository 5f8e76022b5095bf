package routes

import (
	"net/http"
	"testing"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{"ipv4", "10.0.0.1:54321", "", "10.0.0.1"},
		{"ipv6", "[::1]:8080", "", "::1"},
		{"no port", "10.0.0.1", "", "10.0.0.1"},
		{"forwarded", "10.0.0.1:54321", "203.0.113.7", "203.0.113.7"},
		{"forwarded chain", "10.0.0.1:54321", "203.0.113.7, 10.0.0.2", "203.0.113.7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &http.Request{RemoteAddr: tt.remoteAddr, Header: http.Header{}}
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if got := clientIP(r); got != tt.want {
				t.Errorf("clientIP(%q, fwd=%q) = %q, want %q", tt.remoteAddr, tt.forwarded, got, tt.want)
			}
		})
	}
}
