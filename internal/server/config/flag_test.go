package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd",
			"-a", "127.0.0.1:9090", "-b", "127.0.0.1:9091", "-d", "db", "-s", "secret", "-n", "acme",
			"-u", "https://example.com", "-i", "-m", "tmpl-1", "-t", "30", "-o", "5",
		}, expected: &Config{
			EndpointAddrGRPC:      "127.0.0.1:9090",
			AdminAddr:             "127.0.0.1:9091",
			DatabaseDSN:           "db",
			SecretKey:             "secret",
			TenantID:              "acme",
			BaseURL:               "https://example.com",
			AllowUninvitedSignup:  true,
			TemplateAccountID:     "tmpl-1",
			SignupTokenValidity:   30 * time.Minute,
			OperatorTokenValidity: 5 * time.Minute,
		}},
		{name: "explicit false and zero validity", args: []string{"cmd", "-i=false", "-t", "0"},
			expected: &Config{}},
		{name: "foreign flags are ignored", args: []string{"cmd", "-x", "1", "--verbose", "-n", "acme"},
			expected: &Config{TenantID: "acme"}},
		{name: "bad number", args: []string{"cmd", "-t", "soon"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origArgs := os.Args
			t.Cleanup(func() { os.Args = origArgs })
			os.Args = tt.args

			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}
			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(config, tt.expected))
		})
	}
}
