// nationportal/utils/security_test.go
package utils

import (
	"net/http/httptest"
	"testing"
)

// TestHashSecret validates that digests are deterministic and unnormalized.
func TestHashSecret(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Admin Code",
			input:    "admin123",
			expected: "240be518fabd2724ddb6f04eeb1da5967448d7e831c08c8fa822809f74c720a9",
		},
		{
			name:     "Empty Secret",
			input:    "",
			expected: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			digest := HashSecret(tc.input)
			if digest != tc.expected {
				t.Errorf("Expected digest to be '%s', but got '%s'", tc.expected, digest)
			}
			if len(digest) != 64 {
				t.Errorf("Expected digest length to be 64, but got %d", len(digest))
			}
			if again := HashSecret(tc.input); again != digest {
				t.Error("Hashing the same input twice produced different results")
			}
		})
	}

	t.Run("No Normalization", func(t *testing.T) {
		base := HashSecret("admin123")
		for _, variant := range []string{"Admin123", " admin123", "admin123 ", "ADMIN123"} {
			if HashSecret(variant) == base {
				t.Errorf("Expected variant %q to produce a different digest", variant)
			}
		}
	})
}

// TestGetIPAddress verifies the header precedence used for rate-limit keys.
func TestGetIPAddress(t *testing.T) {
	testCases := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		expected   string
	}{
		{"Remote Addr IPv4", "10.0.0.5:12345", nil, "10.0.0.5"},
		{"Remote Addr IPv6", "[::1]:12345", nil, "::1"},
		{"Unparsable Remote Addr", "not-an-ip", nil, "not-an-ip"},
		{"X-Real-IP", "8.8.8.8:12345", map[string]string{"X-Real-IP": "192.168.1.50"}, "192.168.1.50"},
		{"X-Forwarded-For First Hop", "8.8.8.8:12345", map[string]string{"X-Forwarded-For": "1.1.1.1, 10.0.0.1"}, "1.1.1.1"},
		{"Cloudflare Wins", "8.8.8.8:12345", map[string]string{"CF-Connecting-IP": "9.9.9.9", "X-Real-IP": "1.2.3.4"}, "9.9.9.9"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			if ip := GetIPAddress(req); ip != tc.expected {
				t.Errorf("Expected IP %s, but got %s", tc.expected, ip)
			}
		})
	}
}
