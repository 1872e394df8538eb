// Package cli implements the interactive bankauth client: a small REPL with
// register, login, check, whoami and logout commands.
package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/dmitrijs2005/bankauth/internal/client/client"
	"github.com/dmitrijs2005/bankauth/internal/client/config"
)

type authClient interface {
	Register(ctx context.Context, username, fullName, email, password string) (*client.Account, error)
	Login(ctx context.Context, identifier, password string) (*client.Session, error)
	Logout()
	LoggedIn() bool
	CheckUsername(ctx context.Context, username string) (bool, error)
	WhoAmI(ctx context.Context) (*client.Identity, error)
	Ping(ctx context.Context) error
	Close() error
}

type App struct {
	config   *config.Config
	api      authClient
	reader   *bufio.Reader
	out      io.Writer
	userName string
	role     string
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewGRPCClient(c.ServerEndpointAddr, c.RequestTimeout)
	if err != nil {
		return nil, err
	}

	return newApp(c, apiClient, os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, api authClient, in io.Reader, out io.Writer) *App {
	return &App{config: c, api: api, reader: bufio.NewReader(in), out: out}
}

func (a *App) Run(ctx context.Context) {
	defer a.api.Close()

	printlnFn("Welcome to bankauth CLI (type 'help' for commands)")
	if err := a.api.Ping(ctx); err != nil {
		printlnFn("Server", a.config.ServerEndpointAddr, "is not reachable:", err)
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.api.LoggedIn()
}

func (a *App) getStatus() string {
	if a.userName == "" {
		return ""
	}
	return "(" + a.userName + ")"
}
