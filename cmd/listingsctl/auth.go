package main

import (
	"flag"
	"fmt"
	"net/http"

	"estatedesk/client"
	"estatedesk/model"
	"estatedesk/router"
	"estatedesk/session"
)

func runLogin(args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	baseURL := addEnvFlags(fs)
	email := fs.String("email", "", "Account email")
	password := fs.String("password", "", "Account password (prompted when empty)")
	force := fs.Bool("force", false, "Log in again even if a session exists")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: listingsctl login -email EMAIL [options]\n\nLog in and store the session.\n\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := loadEnv(*baseURL)
	if err != nil {
		return err
	}

	if d := router.Resolve(router.PathLogin, e.sess); d.IsRedirect() && !*force {
		fmt.Fprintf(stdout, "Already logged in%s. Use -force to log in again.\n", describeUser(e.sess))
		return nil
	}

	if *email == "" {
		*email = readLine("Email: ")
	}
	if *password == "" {
		if *password, err = readPassword("Password: "); err != nil {
			return err
		}
	}

	ep := client.NewEndpoint[model.UserLoginResponse](e.cfg, session.Session{}, client.Params{
		URL:      "/api/login",
		Method:   http.MethodPost,
		Body:     model.UserLogin{Email: *email, Password: *password},
		Fallback: "Login failed",
	})
	ctx, stop := interruptible()
	defer stop()
	if err := ep.Execute(ctx); err != nil {
		return err
	}
	res, _ := ep.Data()

	sess := session.Session{
		Token: res.Token,
		User:  &session.User{ID: res.User.ID, Email: res.User.Email, Role: res.User.Role},
	}
	if err := e.store.Save(sess); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Logged in%s.\n", describeUser(sess))
	return nil
}

func runLogout(args []string) error {
	fs := flag.NewFlagSet("logout", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := loadEnv("")
	if err != nil {
		return err
	}
	if err := e.store.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "Logged out.")
	return nil
}

func describeUser(sess session.Session) string {
	if sess.User == nil {
		return ""
	}
	return fmt.Sprintf(" as %s (%s)", sess.User.Email, sess.User.Role)
}
