package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/authsignup/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-b string   admin HTTP bind address for metrics, health and pprof ("" disables)
//	-d string   PostgreSQL DSN
//	-s string   operator JWT HMAC secret key
//	-n string   tenant identifier
//	-u string   base URL for signup links
//	-i bool     allow uninvited signup (use -i=false to disable explicitly)
//	-m string   template account id
//	-t int      signup token validity, minutes (0 = never expires)
//	-o int      operator token validity, minutes
//
// Only the flags above are taken from os.Args; anything else is ignored.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-b", "-d", "-s", "-n", "-u", "-i", "-m", "-t", "-o"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.AdminAddr, "b", config.AdminAddr, "admin http address (metrics, health, pprof)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.TenantID, "n", config.TenantID, "tenant identifier")
	fs.StringVar(&config.BaseURL, "u", config.BaseURL, "base url used in signup links")
	fs.BoolVar(&config.AllowUninvitedSignup, "i", config.AllowUninvitedSignup, "allow uninvited signup")
	fs.StringVar(&config.TemplateAccountID, "m", config.TemplateAccountID, "template account id")

	signupTokenValidity := fs.Int("t", int(config.SignupTokenValidity.Minutes()), "signup_token_validity (in minutes, 0 = never expires)")
	operatorTokenValidity := fs.Int("o", int(config.OperatorTokenValidity.Minutes()), "operator_token_validity (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SignupTokenValidity = time.Duration(*signupTokenValidity) * time.Minute
	config.OperatorTokenValidity = time.Duration(*operatorTokenValidity) * time.Minute
}
