package middleware

import (
	"context"
	"net/http/httptest"
	"testing"
)

func TestGetClientID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		apiKey string
		header map[string]string
		remote string
		want   string
	}{
		{
			name:   "authenticated requests are keyed by API key",
			apiKey: "secret-key",
			header: map[string]string{"X-Forwarded-For": "10.0.0.1"},
			want:   "key:secret-key",
		},
		{
			name:   "forwarded-for wins over remote address",
			header: map[string]string{"X-Forwarded-For": "10.0.0.1"},
			remote: "192.168.1.1:1234",
			want:   "ip:10.0.0.1",
		},
		{
			name:   "real-ip fallback",
			header: map[string]string{"X-Real-IP": "10.0.0.2"},
			remote: "192.168.1.1:1234",
			want:   "ip:10.0.0.2",
		},
		{
			name:   "remote address fallback",
			remote: "192.168.1.1:1234",
			want:   "ip:192.168.1.1:1234",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest("POST", "/api/v1/apps/analyze", nil)
			if tt.remote != "" {
				req.RemoteAddr = tt.remote
			}
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			if tt.apiKey != "" {
				ctx := context.WithValue(req.Context(), ContextKeyAPIKey, tt.apiKey)
				req = req.WithContext(ctx)
			}

			if got := getClientID(req); got != tt.want {
				t.Errorf("getClientID() = %q, want %q", got, tt.want)
			}
		})
	}
}
