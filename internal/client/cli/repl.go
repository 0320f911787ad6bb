package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isOperator() bool
	OperatorToken(ctx context.Context) error
	CreateContact(ctx context.Context) error
	Invite(ctx context.Context) error
	URL(ctx context.Context) error
	Lookup(ctx context.Context) error
	Param(ctx context.Context) error
	Params(ctx context.Context) error
	Signup(ctx context.Context) error
	AuthSignup(ctx context.Context) error
}

// runREPL reads commands from reader and dispatches them to a until EOF or
// "exit"/"quit". Handler errors are reported by the handlers themselves.
//
//	help             show available commands
//	operator-token   mint or paste an operator token
//	contact          create a contact                  (operator)
//	invite           issue a signup token              (operator)
//	url              print a contact's signup URL      (operator)
//	param            set a server parameter            (operator)
//	params           list server parameters            (operator)
//	lookup           resolve a token to its contact
//	signup           sign up with or without a token
//	auth-signup      sign in, or sign up when unknown
//	exit | quit      leave the program
//
// Prompts issued by the handlers read from the same reader, so the loop must
// not buffer past the current line.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("signup %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isOperator() {
				printlnFn("Available commands: contact, invite, url, param, params, lookup, signup, auth-signup, operator-token, exit")
			} else {
				printlnFn("Available commands: operator-token, lookup, signup, auth-signup, exit")
			}

		case "operator-token", "token":
			_ = a.OperatorToken(ctx)

		case "contact":
			_ = a.CreateContact(ctx)

		case "invite":
			_ = a.Invite(ctx)

		case "url":
			_ = a.URL(ctx)

		case "param":
			_ = a.Param(ctx)

		case "params":
			_ = a.Params(ctx)

		case "lookup":
			_ = a.Lookup(ctx)

		case "signup":
			_ = a.Signup(ctx)

		case "auth-signup":
			_ = a.AuthSignup(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
