// Copyright (C) 2025 MedEquip Solutions (engineering@medequip-solutions.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// medequip-cli drives the turn pipeline in-process against a local
// database, for demos and manual testing without the HTTP surface.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/medequip-solutions/support-orchestrator/config"
	"github.com/medequip-solutions/support-orchestrator/datatypes"
	"github.com/medequip-solutions/support-orchestrator/pipeline"
	"github.com/medequip-solutions/support-orchestrator/session"
	"github.com/medequip-solutions/support-orchestrator/store"
)

func main() {
	var dbPath string
	var seed bool

	rootCmd := &cobra.Command{
		Use:   "medequip-cli",
		Short: "Interactive MedEquip support assistant",
		Long: `Runs the support assistant pipeline against a local database.

In-session commands:
  /auth <email> <client-id>   verify your identity
  /logout                     clear the verified identity
  /history                    show retained conversation turns
  /quit                       exit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(dbPath, seed)
		},
	}
	rootCmd.Flags().StringVar(&dbPath, "db", "medequip.db", "path to the SQLite database")
	rootCmd.Flags().BoolVar(&seed, "seed", true, "seed sample data on startup")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runInteractive(dbPath string, seed bool) error {
	// Keep structured logs out of the interactive transcript.
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	db, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.EnsureSchema(ctx); err != nil {
		return err
	}
	if seed {
		if err := db.Seed(ctx); err != nil {
			return err
		}
	}

	cfg := config.Default()
	sessions := session.NewManager(db, cfg.HistoryMaxTurns)
	pipe := pipeline.New(db, nil, pipeline.Options{
		TopK:              cfg.RetrievalTopK,
		StructuredTimeout: cfg.StructuredTimeout,
		RetrievalTimeout:  cfg.RetrievalTimeout,
	}, slog.Default())

	sess := sessions.Get(uuid.NewString())
	fmt.Println("MedEquip support assistant. Type /quit to exit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "/") {
			if done := runCommand(ctx, sess, line); done {
				return nil
			}
			continue
		}

		result, err := pipe.ProcessTurn(ctx, sess, line)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			continue
		}
		fmt.Println(result.Reply)
	}
}

// runCommand handles a slash command; returns true on /quit.
func runCommand(ctx context.Context, sess *session.Session, line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true

	case "/auth":
		if len(fields) != 3 {
			fmt.Println("usage: /auth <email> <client-id>")
			return false
		}
		identity, err := sess.Authenticate(ctx, fields[1], fields[2])
		if err != nil {
			if errors.Is(err, datatypes.ErrInvalidCredentials) {
				fmt.Println("Those credentials didn't match a registered client.")
			} else {
				fmt.Fprintln(os.Stderr, "error:", err)
			}
			return false
		}
		fmt.Printf("Welcome, %s.\n", identity.Name)

	case "/logout":
		sess.Logout()
		fmt.Println("Signed out.")

	case "/history":
		for _, turn := range sess.History().Snapshot() {
			fmt.Printf("[%s] %s\n", turn.Role, turn.Text)
		}

	default:
		fmt.Println("unknown command:", fields[0])
	}
	return false
}
