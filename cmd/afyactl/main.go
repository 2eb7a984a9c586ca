// Copyright (c) 2026 AfyaCare. All rights reserved.
// Author: dev@afyacare.health

// Command afyactl is the operator CLI for the AfyaCare clinic client.
//
// # Subcommands
//
//	afyactl login -username drjane -password ...   authenticate and persist the session
//	afyactl whoami                                 show the resumed session's profile
//	afyactl logout                                 tear the session down
//	afyactl patients                               list patient records
//	afyactl appointments                           list appointments
//	afyactl invoices                               list invoices
//
// Configuration comes from the environment (API_BASE_URL, STORE_SECRET, ...),
// the same variables the portal server uses. Logs go to stderr as JSON;
// command output goes to stdout.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/afyacare/clinic-go/internal/clinic"
	"github.com/afyacare/clinic-go/internal/platform/apperr"
	"github.com/afyacare/clinic-go/internal/platform/config"
	"github.com/afyacare/clinic-go/internal/platform/constants"
	"github.com/afyacare/clinic-go/internal/session"
	"github.com/afyacare/clinic-go/internal/tokenstore"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Stderr only: stdout belongs to command output.
	logLevel := slog.LevelWarn
	if os.Getenv("DEBUG") == "true" {
		logLevel = slog.LevelDebug
	}
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})).With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	// ── 2. Configuration & Wiring ─────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	store, cleanup, err := tokenstore.FromConfig(ctx, cfg, log)
	must(log, err, "build session store")
	defer cleanup()

	sessions, err := session.NewManager(cfg.APIBaseURL, store, log)
	must(log, err, "wire session manager")

	records := clinic.NewService(sessions.Client())

	// ── 3. Dispatch ───────────────────────────────────────────────────────
	var commandErr error
	switch command := os.Args[1]; command {
	case "login":
		commandErr = runLogin(ctx, sessions, os.Args[2:])
	case "logout":
		commandErr = sessions.Logout(ctx)
		if commandErr == nil {
			fmt.Println("Signed out.")
		}
	case "whoami", "resume":
		commandErr = runWhoami(ctx, sessions)
	case "patients":
		commandErr = resumed(ctx, sessions, func() error {
			patients, err := records.ListPatients(ctx)
			if err != nil {
				return err
			}
			return printJSON(patients)
		})
	case "appointments":
		commandErr = resumed(ctx, sessions, func() error {
			appointments, err := records.ListAppointments(ctx)
			if err != nil {
				return err
			}
			return printJSON(appointments)
		})
	case "invoices":
		commandErr = resumed(ctx, sessions, func() error {
			invoices, err := records.ListInvoices(ctx)
			if err != nil {
				return err
			}
			return printJSON(invoices)
		})
	default:
		fmt.Fprintf(os.Stderr, "afyactl: unknown command %q\n\n", command)
		usage()
		os.Exit(2)
	}

	if commandErr != nil {
		// Operators see the taxonomy message, not the wrapped cause.
		if appError := apperr.As(commandErr); appError != nil {
			fmt.Fprintln(os.Stderr, appError.Message)
		} else {
			fmt.Fprintln(os.Stderr, commandErr.Error())
		}
		os.Exit(1)
	}
}

// # Subcommands

// runLogin authenticates and reports the landing dashboard for the role.
func runLogin(ctx context.Context, sessions *session.Manager, args []string) error {
	flags := flag.NewFlagSet("login", flag.ExitOnError)
	username := flags.String("username", "", "account username")
	password := flags.String("password", "", "account password")
	_ = flags.Parse(args)

	if *username == "" || *password == "" {
		return apperr.ValidationError("username and password are required")
	}

	profile, landing, err := sessions.Login(ctx, *username, *password)
	if err != nil {
		return err
	}

	fmt.Printf("Signed in as %s (%s). Dashboard: %s\n", profile.DisplayName(), profile.Role, landing)
	return nil
}

// runWhoami resumes the persisted session and prints the profile.
func runWhoami(ctx context.Context, sessions *session.Manager) error {
	profile, err := sessions.Resume(ctx)
	if err != nil {
		return err
	}
	if profile == nil {
		fmt.Println("Not signed in.")
		return nil
	}
	return printJSON(profile)
}

// resumed rehydrates the persisted session before running a data command.
func resumed(ctx context.Context, sessions *session.Manager, run func() error) error {
	profile, err := sessions.Resume(ctx)
	if err != nil {
		return err
	}
	if profile == nil {
		return apperr.Unauthorized("Not signed in. Run `afyactl login` first.")
	}
	return run()
}

// # Helpers

// printJSON renders command output as indented JSON on stdout.
func printJSON(payload interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

func usage() {
	fmt.Fprint(os.Stderr, `afyactl — AfyaCare clinic client

Usage:
  afyactl login -username <name> -password <secret>
  afyactl whoami      (alias: resume)
  afyactl logout
  afyactl patients
  afyactl appointments
  afyactl invoices
`)
}

// must logs a structured fatal error and terminates the process if err is non-nil.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
