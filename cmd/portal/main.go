package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/propertydesk/property-broker/internal/auth"
	"github.com/propertydesk/property-broker/internal/common"
	"github.com/propertydesk/property-broker/internal/export"
	"github.com/propertydesk/property-broker/internal/extract"
	"github.com/propertydesk/property-broker/internal/ingest"
	"github.com/propertydesk/property-broker/internal/parser"
	"github.com/propertydesk/property-broker/internal/repository"
	"github.com/propertydesk/property-broker/internal/schema"
)

type app struct {
	cfg    *common.Config
	logger *slog.Logger
	users  repository.UserRepository
	props  repository.PropertyRepository
	ingest *ingest.Service
	close  func()
}

func newApp(ctx context.Context) (*app, error) {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client, db, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	users := repository.NewUserRepository(db, logger)
	props := repository.NewPropertyRepository(db, logger)
	subs := repository.NewSubscriptionRepository(db, logger)

	validator, err := schema.NewValidator()
	if err != nil {
		return nil, err
	}
	extractor := extract.NewPDFExtractor(cfg.Ingest.ExtractTimeout, logger)
	exportSvc := export.NewService(props, users, subs, logger)
	ingestSvc := ingest.NewService(extractor, props, validator, parser.Options{DefaultCity: cfg.Ingest.CityDomain}, logger).
		WithSnapshot(exportSvc, cfg.Ingest.ExcelDir)

	return &app{
		cfg:    cfg,
		logger: logger,
		users:  users,
		props:  props,
		ingest: ingestSvc,
		close: func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		},
	}, nil
}

func main() {
	root := &cobra.Command{
		Use:           "portal",
		Short:         "Property listing platform admin tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(importPDFCmd())
	root.AddCommand(importDirCmd())
	root.AddCommand(resetPropertiesCmd())
	root.AddCommand(createAdminCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func importPDFCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-pdf <file>",
		Short: "Extract and persist property records from a listing PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			res, err := a.ingest.IngestFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("extracted=%d saved=%d dropped=%d failed=%d\n",
				res.Extracted, res.Saved, res.Dropped, res.Failed)
			for _, e := range res.Errors {
				fmt.Println("  !", e)
			}
			return nil
		},
	}
}

func importDirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-dir <dir>",
		Short: "Ingest every listing PDF under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			results, stats, err := a.ingest.IngestDirectory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, r := range results {
				if len(r.Errors) > 0 {
					fmt.Printf("%s: failed: %v\n", r.SourcePDF, r.Errors)
					continue
				}
				fmt.Printf("%s: saved %d of %d\n", r.SourcePDF, r.Saved, r.Extracted)
			}
			fmt.Printf("scanned=%d matched=%d succeeded=%d failed=%d rows=%d\n",
				stats.Scanned, stats.Matched, stats.Succeeded, stats.Failed, stats.SavedRows)
			return nil
		},
	}
}

func resetPropertiesCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset-properties",
		Short: "Delete every stored property record",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete without --yes")
			}
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			n, err := a.props.DeleteAll(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("deleted %d properties\n", n)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}

func createAdminCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create the admin account if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if email == "" {
				email = a.cfg.Auth.AdminEmail
			}
			if password == "" {
				password = a.cfg.Auth.AdminPassword
			}

			tokens := auth.NewTokenManager(a.cfg.Auth)
			svc := auth.NewService(a.users, tokens, a.logger)
			if err := svc.EnsureAdmin(cmd.Context(), email, password); err != nil {
				return err
			}
			fmt.Printf("admin account ready: %s\n", email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email (defaults to ADMIN_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "admin password (defaults to ADMIN_PASSWORD)")
	return cmd
}
