package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/authsignup/internal/flagx"
	"github.com/dmitrijs2005/authsignup/internal/timex"
)

// JsonConfig is the on-disk shape of the signupctl config file.
type JsonConfig struct {
	ServerEndpointAddr    string          `json:"server_endpoint_addr"`
	CallTimeout           *timex.Duration `json:"call_timeout"`
	OperatorToken         string          `json:"operator_token"`
	OperatorName          string          `json:"operator_name"`
	SecretKey             string          `json:"secret_key"`
	OperatorTokenValidity *timex.Duration `json:"operator_token_validity"`
}

// parseJson overlays cfg with the file named by -c/-config, if any. Keys that
// are absent keep their current value. Read or decode errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFile()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	for dst, v := range map[*string]string{
		&cfg.ServerEndpointAddr: jc.ServerEndpointAddr,
		&cfg.OperatorToken:      jc.OperatorToken,
		&cfg.OperatorName:       jc.OperatorName,
		&cfg.SecretKey:          jc.SecretKey,
	} {
		if v != "" {
			*dst = v
		}
	}
	if jc.CallTimeout != nil {
		cfg.CallTimeout = jc.CallTimeout.Duration
	}
	if jc.OperatorTokenValidity != nil {
		cfg.OperatorTokenValidity = jc.OperatorTokenValidity.Duration
	}
}
