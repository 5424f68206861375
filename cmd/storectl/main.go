// Command storectl is a terminal client for the store rating API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Clark-Hu/store-rating/internal/client"
	"github.com/Clark-Hu/store-rating/internal/logging"
)

const usage = `usage: storectl <command> [flags]

commands:
  register     create an account and sign in
  login        sign in
  logout       forget the stored session
  whoami       show the signed-in account
  password     change the password
  stores       list stores (-search, -category, -status, -sort)
  rate         rate a store (-store, -score, -comment)
  my-ratings   list your ratings
  owner        store owner tools: dashboard, create-store, update-store, analytics
  admin        admin tools: stats, users, user, stores, store-ratings, owners

environment:
  STORECTL_API      API base URL (default http://localhost:8080)
  STORECTL_SESSION  session file (default ~/.storectl/session)
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Getenv); err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			fmt.Fprintln(os.Stderr, apiErr.Message)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer, getenv func(string) string) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "help" {
		fmt.Fprint(out, usage)
		return nil
	}

	logger := logging.NewWithWriter(os.Stderr, envOr(getenv, "STORECTL_LOG_LEVEL", "warn"), "text")

	sessionPath := getenv("STORECTL_SESSION")
	if sessionPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("locate session file: %w", err)
		}
		sessionPath = filepath.Join(home, ".storectl", "session")
	}
	session, err := client.LoadSession(sessionPath, time.Now())
	if err != nil {
		return err
	}

	c, err := client.New(envOr(getenv, "STORECTL_API", "http://localhost:8080"), 15*time.Second, session, logger)
	if err != nil {
		return err
	}

	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command %q\n\n%s", args[0], usage)
	}
	return cmd(ctx, &cli{client: c, out: out}, args[1:])
}

func envOr(getenv func(string) string, key, fallback string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return fallback
}

type cli struct {
	client *client.Client
	out    io.Writer
}
