package verify

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mcpdex/mcpdex/internal/errors"
)

func TestValidateDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		domain  string
		want    string
		wantErr error
	}{
		{
			name:   "simple domain",
			domain: "example.com",
			want:   "example.com",
		},
		{
			name:   "subdomain",
			domain: "mcp.api.example.com",
			want:   "mcp.api.example.com",
		},
		{
			name:   "normalizes case and whitespace",
			domain: "  EXAMPLE.Com  ",
			want:   "example.com",
		},
		{
			name:   "strips trailing dot",
			domain: "example.com.",
			want:   "example.com",
		},
		{
			name:   "hyphens inside labels",
			domain: "my-server.example.com",
			want:   "my-server.example.com",
		},
		{
			name:    "empty",
			domain:  "   ",
			wantErr: errors.ErrInvalidDomain,
		},
		{
			name:    "localhost",
			domain:  "localhost",
			wantErr: errors.ErrInvalidDomain,
		},
		{
			name:    "bare IPv4",
			domain:  "192.168.1.10",
			wantErr: errors.ErrInvalidDomain,
		},
		{
			name:    "bare IPv6",
			domain:  "::1",
			wantErr: errors.ErrInvalidDomain,
		},
		{
			name:    "reserved suffix local",
			domain:  "printer.local",
			wantErr: errors.ErrInvalidDomain,
		},
		{
			name:    "reserved suffix internal",
			domain:  "service.corp.internal",
			wantErr: errors.ErrInvalidDomain,
		},
		{
			name:    "single label",
			domain:  "example",
			wantErr: errors.ErrInvalidDomain,
		},
		{
			name:    "label starting with hyphen",
			domain:  "-bad.example.com",
			wantErr: errors.ErrInvalidDomain,
		},
		{
			name:    "label ending with hyphen",
			domain:  "bad-.example.com",
			wantErr: errors.ErrInvalidDomain,
		},
		{
			name:    "empty label",
			domain:  "bad..example.com",
			wantErr: errors.ErrInvalidDomain,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := ValidateDomain(tc.domain)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestValidateEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		endpoint string
		wantErr  error
	}{
		{
			name:     "https endpoint",
			endpoint: "https://mcp.example.com/v1",
		},
		{
			name:     "https with port",
			endpoint: "https://mcp.example.com:8443/",
		},
		{
			name:     "empty",
			endpoint: "",
			wantErr:  errors.ErrInsecureEndpoint,
		},
		{
			name:     "plain http",
			endpoint: "http://mcp.example.com/",
			wantErr:  errors.ErrInsecureEndpoint,
		},
		{
			name:     "localhost host",
			endpoint: "https://localhost/mcp",
			wantErr:  errors.ErrInsecureEndpoint,
		},
		{
			name:     "loopback IP host",
			endpoint: "https://127.0.0.1/mcp",
			wantErr:  errors.ErrInsecureEndpoint,
		},
		{
			name:     "private IP host",
			endpoint: "https://10.0.0.5/mcp",
			wantErr:  errors.ErrInsecureEndpoint,
		},
		{
			name:     "reserved suffix host",
			endpoint: "https://nas.local/mcp",
			wantErr:  errors.ErrInsecureEndpoint,
		},
		{
			name:     "public IP host is allowed",
			endpoint: "https://203.0.113.10/mcp",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := ValidateEndpoint(tc.endpoint)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.endpoint, got)
		})
	}
}

func TestValidateContactEmail(t *testing.T) {
	t.Parallel()

	got, err := ValidateContactEmail("ops@example.com")
	require.NoError(t, err)
	require.Equal(t, "ops@example.com", got)

	got, err = ValidateContactEmail("Ops Team <ops@example.com>")
	require.NoError(t, err)
	require.Equal(t, "ops@example.com", got)

	_, err = ValidateContactEmail("")
	require.ErrorIs(t, err, errors.ErrBadRequest)

	_, err = ValidateContactEmail("not-an-address")
	require.ErrorIs(t, err, errors.ErrBadRequest)
}
