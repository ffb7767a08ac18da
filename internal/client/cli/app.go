package cli

import (
	"bufio"
	"context"
	"io"
	"log"
	"os"
	"time"

	"github.com/dmitrijs2005/activitydash/internal/client/api"
	"github.com/dmitrijs2005/activitydash/internal/client/config"
)

// APIClient is the server surface the CLI uses; *api.Client satisfies it.
type APIClient interface {
	Register(ctx context.Context, username, email, password string) (*api.User, error)
	Login(ctx context.Context, username, password string) (*api.TokenPair, error)
	Logout(ctx context.Context, access, refresh string) error
	Profile(ctx context.Context, access string) (*api.User, error)
	UpdateProfile(ctx context.Context, access string, in api.ProfileUpdate) (*api.User, error)
	ActivityChart(ctx context.Context, access string) ([]api.DailyCount, error)
	ExportActivityChart(ctx context.Context, access string) (*api.Export, error)
	Ping(ctx context.Context) error
}

type App struct {
	config   *config.Config
	client   APIClient
	tokens   *api.TokenPair
	userName string
	reader   *bufio.Reader
	out      io.Writer
}

func NewApp(c *config.Config) *App {
	return &App{
		config: c,
		client: api.New(c.ServerURL, c.RequestTimeout),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
}

func (a *App) isLoggedIn() bool {
	return a.tokens != nil
}

func (a *App) getStatus() string {
	if a.userName == "" {
		return ""
	}
	return "(" + a.userName + ") "
}

// Run greets the user, reports whether the server answers, and blocks in
// the REPL until exit or EOF.
func (a *App) Run(ctx context.Context) {
	printlnFn("Welcome to activitydash CLI (type 'help' for commands)")

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	if err := a.client.Ping(pingCtx); err != nil {
		log.Printf("Server %s is not reachable: %s", a.config.ServerURL, err.Error())
	}
	cancel()

	runREPL(ctx, a, a.getStatus, a.reader)
}
