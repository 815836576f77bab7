package main

import (
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/vrsandeep/reel-go/internal/auth"
	"github.com/vrsandeep/reel-go/internal/core"
	"github.com/vrsandeep/reel-go/internal/db"
	"github.com/vrsandeep/reel-go/internal/enrich"
	"github.com/vrsandeep/reel-go/internal/lists"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			database, err := db.InitDB(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := db.RunMigrations(database); err != nil {
				return err
			}
			log.Info().Str("path", cfg.Database.Path).Msg("Migrations applied successfully.")
			return nil
		},
	}
}

func newUserCommand() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	var username, password, role string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				return errors.New("--username is required")
			}
			if role != "user" && role != "admin" {
				return fmt.Errorf("unknown role %q", role)
			}
			generated := password == ""
			if generated {
				password = rand.Text()
			}
			return withApp(func(app *core.App) error {
				hash, err := auth.HashPassword(password)
				if err != nil {
					return err
				}
				user, err := app.Store.CreateUser(username, hash, role)
				if err != nil {
					return fmt.Errorf("create user %s: %w", username, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s (id %s)\n", user.Role, user.Username, user.ID)
				if generated {
					fmt.Fprintf(cmd.OutOrStdout(), "Password: %s\n", password)
				}
				return nil
			})
		},
	}
	createCmd.Flags().StringVarP(&username, "username", "u", "", "Login name")
	createCmd.Flags().StringVarP(&password, "password", "p", "", "Password (generated when empty)")
	createCmd.Flags().StringVar(&role, "role", "user", "Role: user or admin")

	userCmd.AddCommand(createCmd)
	return userCmd
}

func newEnrichCommand() *cobra.Command {
	var userIDs []string
	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Run one enrichment pass in the foreground",
		Long:  "Run one enrichment pass over the given users' lists, or every user's when --user is omitted. Ctrl-C stops after the current item.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return withApp(func(app *core.App) error {
				if len(userIDs) == 0 {
					ids, err := app.Store.UserIDs(ctx)
					if err != nil {
						return err
					}
					userIDs = ids
				}
				summary, err := app.Worker.Run(ctx, userIDs...)
				fmt.Fprintf(cmd.OutOrStdout(), "lists=%d enriched=%d failed=%d stopped=%t\n",
					summary.Lists, summary.Enriched, summary.Failed, summary.Stopped)
				if enrich.IsStopped(err) {
					return nil
				}
				return err
			})
		},
	}
	cmd.Flags().StringSliceVar(&userIDs, "user", nil, "User id to enrich (repeatable)")
	return cmd
}

func newExportCommand() *cobra.Command {
	var userID, listID, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a list as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return errors.New("--user is required")
			}
			return withApp(func(app *core.App) error {
				file, err := app.Lists.Export(cmd.Context(), userID, listID)
				if errors.Is(err, lists.ErrEmptyList) {
					fmt.Fprintln(cmd.ErrOrStderr(), "The list is empty, nothing to export.")
					return nil
				}
				if err != nil {
					return err
				}
				if out == "" {
					out = file.Filename
				}
				if out == "-" {
					_, err = cmd.OutOrStdout().Write(file.Body)
					return err
				}
				if err := os.WriteFile(out, file.Body, 0o644); err != nil {
					return err
				}
				log.Info().Str("file", out).Int("rows", file.Rows).Msg("Exported list")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "Owner user id")
	cmd.Flags().StringVar(&listID, "list", "watchlist", "List id")
	cmd.Flags().StringVarP(&out, "out", "o", "", `Output file, "-" for stdout (default: generated name)`)
	return cmd
}
