package main

import (
	"fmt"
	"io"
	"os"

	"github.com/labstack/gommon/log"
)

var version = "dev"

var (
	stdout io.Writer = os.Stdout
	stdin  io.Reader = os.Stdin
)

var commands = map[string]func([]string) error{
	"login":  runLogin,
	"logout": runLogout,
	"list":   runList,
	"add":    runAdd,
	"edit":   runEdit,
	"delete": runDelete,
}

func usage() {
	fmt.Fprintf(os.Stderr, `listingsctl - estatedesk listings admin (version %s)

Usage:
  listingsctl <command> [options]

Commands:
  login    Log in and remember the session
  logout   Forget the stored session
  list     Show the listings table
  add      Add a listing (admin)
  edit     Edit a listing (admin)
  delete   Delete a listing (admin)

Environment:
  ESTATEDESK_URL      API origin, e.g. https://estate.example
  ESTATEDESK_DEV=1    Use http://localhost:5000
  ESTATEDESK_SESSION  Session file (default ~/.estatedesk/session.json)

Run 'listingsctl <command> -h' for command-specific help.
`, version)
}

func main() {
	log.SetOutput(os.Stderr)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	if cmd == "-h" || cmd == "--help" || cmd == "help" {
		usage()
		os.Exit(0)
	}
	if cmd == "-v" || cmd == "--version" || cmd == "version" {
		fmt.Println(version)
		os.Exit(0)
	}

	fn, ok := commands[cmd]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}

	if err := fn(os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
