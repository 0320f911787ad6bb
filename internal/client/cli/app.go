package cli

import (
	"bufio"
	"context"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/authsignup/internal/client/client"
	"github.com/dmitrijs2005/authsignup/internal/client/config"
)

// signupAPI is the client surface the shell drives. *client.SignupClient
// satisfies it.
type signupAPI interface {
	CreateContact(ctx context.Context, name string) (string, error)
	GenerateToken(ctx context.Context, contactID string, expiresAt *time.Time, never bool) (*client.Token, error)
	GetSignupURL(ctx context.Context, contactID string) (string, error)
	RetrieveContact(ctx context.Context, token string) (string, error)
	Signup(ctx context.Context, login, password, name, token string) (*client.Result, error)
	AuthSignup(ctx context.Context, name, login, password string) (*client.Result, error)
	SetParam(ctx context.Context, key, value string) error
	ListParams(ctx context.Context) (map[string]string, error)
	SetAccessToken(token string)
	AccessToken() string
	Close() error
}

type App struct {
	config *config.Config
	api    signupAPI
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewSignupClient(c.ServerEndpointAddr, c.CallTimeout)
	if err != nil {
		return nil, err
	}
	apiClient.SetAccessToken(c.OperatorToken)

	return &App{config: c, api: apiClient, reader: bufio.NewReader(os.Stdin), out: os.Stdout}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.api.Close()

	printlnFn("Welcome to signupctl (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) isOperator() bool {
	return a.api.AccessToken() != ""
}

func (a *App) getStatus() string {
	if a.isOperator() {
		return "(operator)"
	}
	return ""
}
