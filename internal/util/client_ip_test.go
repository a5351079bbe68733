package util

import (
	"net/http/httptest"
	"testing"
)

func TestClientIPResolution(t *testing.T) {
	trusted, err := NewTrustedProxies([]string{"172.16.0.0/12", "203.0.113.9"})
	if err != nil {
		t.Fatalf("new trusted proxies: %v", err)
	}

	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xrip       string
		trusted    *TrustedProxies
		want       string
	}{
		{
			name:       "untrusted peer keeps remote addr",
			remoteAddr: "198.51.100.44:9000",
			xff:        "192.0.2.1",
			xrip:       "192.0.2.2",
			want:       "198.51.100.44",
		},
		{
			name:       "trusted peer honors forwarded-for",
			remoteAddr: "172.16.4.4:9000",
			xff:        "192.0.2.1",
			trusted:    trusted,
			want:       "192.0.2.1",
		},
		{
			name:       "chain walks right to left past trusted hops",
			remoteAddr: "172.16.4.4:9000",
			xff:        "192.0.2.1, 172.16.0.9",
			trusted:    trusted,
			want:       "192.0.2.1",
		},
		{
			name:       "unparsable forwarded-for falls back to real-ip",
			remoteAddr: "172.16.4.4:9000",
			xff:        "garbage",
			xrip:       "192.0.2.3",
			trusted:    trusted,
			want:       "192.0.2.3",
		},
		{
			name:       "fully trusted chain returns leftmost hop",
			remoteAddr: "172.16.4.4:9000",
			xff:        "172.16.0.5, 172.16.0.9",
			trusted:    trusted,
			want:       "172.16.0.5",
		},
		{
			name:       "ipv6 remote addr",
			remoteAddr: "[2001:db8::1]:9000",
			want:       "2001:db8::1",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "http://example.com", nil)
			req.RemoteAddr = tc.remoteAddr
			if tc.xff != "" {
				req.Header.Set("X-Forwarded-For", tc.xff)
			}
			if tc.xrip != "" {
				req.Header.Set("X-Real-IP", tc.xrip)
			}
			if got := ClientIP(req, tc.trusted); got != tc.want {
				t.Fatalf("client ip = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNewTrustedProxiesParsing(t *testing.T) {
	if tp, err := NewTrustedProxies([]string{" ", ""}); err != nil || tp != nil {
		t.Fatalf("blank entries should yield nil set, got %v / %v", tp, err)
	}
	if _, err := NewTrustedProxies([]string{"172.16.0.0/12", "2001:db8::1"}); err != nil {
		t.Fatalf("expected valid entries, got err: %v", err)
	}
	if _, err := NewTrustedProxies([]string{"not-an-ip"}); err == nil {
		t.Fatal("expected parse error for invalid entry")
	}
}
