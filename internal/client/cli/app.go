package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/kilnworks/brickline/internal/client/api"
	"github.com/kilnworks/brickline/internal/client/session"
	"github.com/kilnworks/brickline/internal/client/store"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

type App struct {
	sessions *session.Manager
	reader   *bufio.Reader
}

func NewApp(serverURL, statePath string, log *zap.Logger) (*App, error) {
	st, err := store.OpenSQLite(statePath)
	if err != nil {
		return nil, err
	}

	client := api.New(serverURL)
	manager := session.NewManager(client, st, log,
		session.WithWarningFunc(func(w session.Warning) {
			printlnFn(fmt.Sprintf("Session expires in %s. Type 'refresh' to extend or 'logout' to end it.", w.Remaining.Round(1e9)))
		}),
		session.WithLogoutFunc(func(reason string) {
			printlnFn("Session ended: " + reason)
		}),
	)

	return &App{
		sessions: manager,
		reader:   bufio.NewReader(os.Stdin),
	}, nil
}

// Run restores any persisted session, starts the background schedule
// and hands control to the REPL.
func (a *App) Run(ctx context.Context) error {
	state, err := a.sessions.Restore(ctx)
	if err != nil {
		return err
	}
	if state.Authenticated() {
		printlnFn("Welcome back, " + state.User.Username)
	}

	a.sessions.Start(ctx)
	defer a.sessions.Stop()

	return a.repl(ctx)
}

func (a *App) repl(ctx context.Context) error {
	for {
		fmt.Print(a.prompt())
		line, err := a.reader.ReadString('\n')
		if err != nil {
			return nil
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "help":
			a.help()
		case "register":
			a.register(ctx)
		case "login":
			a.login(ctx)
		case "logout":
			a.logout(ctx)
		case "whoami":
			a.whoami(ctx)
		case "refresh":
			a.refresh(ctx)
		case "wake":
			// simulates the app returning to the foreground
			a.sessions.NotifyVisible()
		case "exit", "quit":
			return nil
		default:
			printlnFn("Unknown command. Type 'help' for the command list.")
		}
	}
}

func (a *App) prompt() string {
	state := a.sessions.State()
	if state.Authenticated() {
		return state.User.Username + "> "
	}
	return "> "
}

func (a *App) help() {
	printlnFn("Commands: register, login, logout, whoami, refresh, wake, exit")
}

func (a *App) register(ctx context.Context) {
	req := api.RegisterRequest{
		Username:  a.ask("Username: "),
		Email:     a.ask("Email: "),
		Password:  a.ask("Password: "),
		FirstName: a.ask("First name: "),
		LastName:  a.ask("Last name: "),
	}
	remember := a.askBool("Stay signed in? (y/n): ")

	user, err := a.sessions.Register(ctx, req, remember)
	if err != nil {
		printlnFn("Registration failed: " + err.Error())
		return
	}
	printlnFn("Registered as " + user.Username)
}

func (a *App) login(ctx context.Context) {
	email := a.ask("Email: ")
	password := a.ask("Password: ")
	remember := a.askBool("Stay signed in? (y/n): ")

	user, err := a.sessions.Login(ctx, email, password, remember)
	if err != nil {
		printlnFn("Login failed: " + err.Error())
		return
	}
	printlnFn("Logged in as " + user.Username)
}

func (a *App) logout(ctx context.Context) {
	if err := a.sessions.Logout(ctx); err != nil {
		printlnFn("Logout failed: " + err.Error())
		return
	}
	printlnFn("Logged out")
}

func (a *App) whoami(ctx context.Context) {
	if !a.sessions.State().Authenticated() {
		printlnFn("Not logged in")
		return
	}
	user, err := a.sessions.CurrentUser(ctx)
	if err != nil {
		printlnFn("Failed to fetch profile: " + err.Error())
		return
	}
	printlnFn(fmt.Sprintf("%s <%s> (%s)", user.Username, user.Email, user.Role))
}

func (a *App) refresh(ctx context.Context) {
	if err := a.sessions.Refresh(ctx); err != nil {
		printlnFn("Refresh failed: " + err.Error())
		return
	}
	printlnFn("Session extended")
}

func (a *App) ask(prompt string) string {
	fmt.Print(prompt)
	line, _ := a.reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func (a *App) askBool(prompt string) bool {
	answer := strings.ToLower(a.ask(prompt))
	return answer == "y" || answer == "yes"
}
