package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/authsignup/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
//	-a string   address and port of the signup server
//	-t int      per-call timeout in seconds
//	-k string   operator access token
//	-p string   operator name used for locally minted tokens
//	-s string   secret key for minting operator tokens
//	-o int      validity of minted operator tokens, minutes
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-k", "-p", "-s", "-o"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	callTimeout := fs.Int("t", int(cfg.CallTimeout.Seconds()), "call timeout (in seconds)")
	fs.StringVar(&cfg.OperatorToken, "k", cfg.OperatorToken, "operator access token")
	fs.StringVar(&cfg.OperatorName, "p", cfg.OperatorName, "operator name")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "secret key for minting operator tokens")
	operatorTokenValidity := fs.Int("o", int(cfg.OperatorTokenValidity.Minutes()), "operator token validity (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.CallTimeout = time.Duration(*callTimeout) * time.Second
	cfg.OperatorTokenValidity = time.Duration(*operatorTokenValidity) * time.Minute
}
