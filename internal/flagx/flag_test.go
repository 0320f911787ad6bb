package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	serverFlags := []string{"-a", "-d", "-b", "-k"}

	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{"separate values", []string{"-a", ":50051", "-t", "5", "-b", ":9090"}, serverFlags, []string{"-a", ":50051", "-b", ":9090"}},
		{"equals form", []string{"-b=:9090", "-o=60"}, serverFlags, []string{"-b=:9090"}},
		{"equals value starting with dash", []string{"-k=-secret-"}, serverFlags, []string{"-k=-secret-"}},
		{"missing value at end", []string{"-d"}, serverFlags, []string{"-d"}},
		{"next flag is not a value", []string{"-k", "-b", ":9090"}, serverFlags, []string{"-k", "-b", ":9090"}},
		{"repeats kept in order", []string{"-a", ":1", "-a", ":2"}, serverFlags, []string{"-a", ":1", "-a", ":2"}},
		{"positional args dropped", []string{"invite", "-x", "1"}, serverFlags, []string{}},
		{"dsn with spaces stays whole", []string{"-d", "host=db user=signup"}, serverFlags, []string{"-d", "host=db user=signup"}},
		{"no args", nil, serverFlags, []string{}},
		{"nothing allowed", []string{"-a", ":1"}, nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.allowed)
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigFile(t *testing.T) {
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"short", []string{"signupctl", "-c", "client.json", "-a", "localhost:50051"}, "client.json"},
		{"long equals", []string{"server", "-config=/etc/authsignup.json"}, "/etc/authsignup.json"},
		{"absent", []string{"server", "-b", ":9090"}, ""},
		{"last wins", []string{"server", "-c", "a.json", "-config", "b.json"}, "b.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			assert.Equal(t, tt.want, ConfigFile())
		})
	}
}
