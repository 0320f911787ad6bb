package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/authsignup/internal/flagx"
	"github.com/dmitrijs2005/authsignup/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept both
// strings such as "15m" and integer nanoseconds. Absent keys leave the
// current value alone.
type JsonConfig struct {
	EndpointAddrGRPC      string          `json:"endpoint_addr_grpc"`
	AdminAddr             *string         `json:"admin_addr"`
	DatabaseDSN           string          `json:"database_dsn"`
	SecretKey             string          `json:"secret_key"`
	TenantID              string          `json:"tenant_id"`
	BaseURL               string          `json:"base_url"`
	AllowUninvitedSignup  *bool           `json:"allow_uninvited_signup"`
	TemplateAccountID     string          `json:"template_account_id"`
	SignupTokenValidity   *timex.Duration `json:"signup_token_validity"`
	OperatorTokenValidity *timex.Duration `json:"operator_token_validity"`
}

// parseJson overlays the file named by -c/-config onto config. Nothing happens
// when no file is given; an unreadable or invalid file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFile()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.TenantID, c.TenantID)
	setString(&config.BaseURL, c.BaseURL)
	setString(&config.TemplateAccountID, c.TemplateAccountID)

	if c.AdminAddr != nil {
		config.AdminAddr = *c.AdminAddr
	}
	if c.AllowUninvitedSignup != nil {
		config.AllowUninvitedSignup = *c.AllowUninvitedSignup
	}
	if c.SignupTokenValidity != nil {
		config.SignupTokenValidity = c.SignupTokenValidity.Duration
	}
	if c.OperatorTokenValidity != nil {
		config.OperatorTokenValidity = c.OperatorTokenValidity.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
