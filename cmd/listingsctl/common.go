package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"golang.org/x/term"

	"estatedesk/admin"
	"estatedesk/client"
	"estatedesk/router"
	"estatedesk/session"
)

var errNotLoggedIn = errors.New("not logged in, run 'listingsctl login' first")

// env is what every command starts from: where the API is and who we are.
type env struct {
	cfg   client.Config
	store session.FileStore
	sess  session.Session
}

func addEnvFlags(fs *flag.FlagSet) *string {
	return fs.String("url", "", "API origin (overrides ESTATEDESK_URL)")
}

func loadEnv(baseURL string) (*env, error) {
	cfg := client.ConfigFromEnv()
	if baseURL != "" {
		cfg.BaseURL = baseURL
		cfg.Dev = false
	}

	path, err := session.DefaultPath()
	if err != nil {
		return nil, fmt.Errorf("locate session: %w", err)
	}
	store := session.FileStore{Path: path}
	sess, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, store: store, sess: sess}, nil
}

// dashboard opens the listings view the way the guarded route would.
func (e *env) dashboard(opts ...admin.Option) (*admin.ListingsView, error) {
	if d := router.Resolve(router.PathDashboard, e.sess); d.View != router.ViewDashboard {
		return nil, errNotLoggedIn
	}
	api := admin.HTTPAPI{Config: e.cfg, Session: e.sess}
	opts = append([]admin.Option{admin.WithPreviews(admin.TempFilePreviews{})}, opts...)
	return admin.NewListingsView(api, e.sess, opts...), nil
}

func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// promptConfirm asks on stdin; anything but y/yes is a no.
func promptConfirm(prompt string) bool {
	switch strings.ToLower(readLine(prompt + " [y/N] ")) {
	case "y", "yes":
		return true
	}
	return false
}

// readLine reads byte by byte so consecutive prompts don't swallow each other's input.
func readLine(prompt string) string {
	fmt.Fprint(stdout, prompt)
	var sb strings.Builder
	b := make([]byte, 1)
	for {
		n, err := stdin.Read(b)
		if n == 1 {
			if b[0] == '\n' {
				break
			}
			sb.WriteByte(b[0])
		}
		if err != nil {
			break
		}
	}
	return strings.TrimSpace(sb.String())
}

// readPassword reads without echo when stdin is a terminal. Piped input is
// read as a plain line.
func readPassword(prompt string) (string, error) {
	f, ok := stdin.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return readLine(prompt), nil
	}

	fmt.Fprint(stdout, prompt)
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(stdout)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}
