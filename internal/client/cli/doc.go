// Package cli implements signupctl, an interactive shell over the
// SignupService. Operators create contacts, issue signup tokens and print
// signup URLs; the same shell can drive a token or uninvited signup the way
// the web signup page does.
package cli
