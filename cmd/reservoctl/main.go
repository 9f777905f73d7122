package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/reservo/reservo/cmd/reservoctl/cli"
	"github.com/reservo/reservo/internal/accounts"
	"github.com/reservo/reservo/internal/app"
	"github.com/reservo/reservo/internal/platform/db"
)

const programName = "reservoctl"

type configKey struct{}

func configFrom(cmd *cobra.Command) (*app.Config, error) {
	cfg, ok := cmd.Context().Value(configKey{}).(*app.Config)
	if !ok || cfg == nil {
		return nil, errors.New("no config found in context")
	}
	return cfg, nil
}

func redisOpts(cfg *app.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
}

func main() {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Operate a reservo deployment",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := app.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
		return nil
	}

	rootCmd.AddCommand(migrateCommand())
	rootCmd.AddCommand(adminCommand())
	rootCmd.AddCommand(seedCommand())
	rootCmd.AddCommand(jobsCommand())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", programName, err)
		os.Exit(1)
	}
}

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFrom(cmd)
			if err != nil {
				return err
			}
			if err := db.Migrate(cmd.Context(), cfg.PGDSN); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

// withAccounts opens the Postgres credential store for the duration of fn.
func withAccounts(cmd *cobra.Command, fn func(*accounts.Service) error) error {
	cfg, err := configFrom(cmd)
	if err != nil {
		return err
	}
	pool, err := db.New(cmd.Context(), cfg.PGDSN, 2)
	if err != nil {
		return err
	}
	defer pool.Close()
	svc, err := accounts.NewService(accounts.NewRepository(pool), cfg.BcryptCost)
	if err != nil {
		return err
	}
	return fn(svc)
}

func adminCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin accounts",
	}
	var name, password string
	create := &cobra.Command{
		Use:   "create <identifier>",
		Short: "Create an admin account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("RESERVO_ADMIN_PASSWORD")
			}
			display := name
			if display == "" {
				display = args[0]
			}
			return withAccounts(cmd, func(svc *accounts.Service) error {
				return cli.CreateAdmin(cmd.Context(), svc, cmd.OutOrStdout(), args[0], display, password)
			})
		},
	}
	create.Flags().StringVar(&name, "name", "", "display name (defaults to the identifier)")
	create.Flags().StringVar(&password, "password", "", "password (or RESERVO_ADMIN_PASSWORD)")
	cmd.AddCommand(create)
	return cmd
}

func seedCommand() *cobra.Command {
	var identifiers, password string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create demo regular accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			var ids []string
			for _, id := range strings.Split(identifiers, ",") {
				if id = strings.TrimSpace(id); id != "" {
					ids = append(ids, id)
				}
			}
			return withAccounts(cmd, func(svc *accounts.Service) error {
				created, err := cli.SeedAccounts(cmd.Context(), svc, cmd.OutOrStdout(), ids, password)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d accounts created\n", created)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&identifiers, "accounts", "alice,bob,carol,dave", "comma separated identifiers")
	cmd.Flags().StringVar(&password, "password", "", "password shared by seeded accounts")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func jobsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and trigger background jobs",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show queue statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFrom(cmd)
			if err != nil {
				return err
			}
			inspector := asynq.NewInspector(redisOpts(cfg))
			defer inspector.Close()
			return cli.QueueStats(inspector, cmd.OutOrStdout())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "audit",
		Short: "Enqueue a slot counter audit now",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFrom(cmd)
			if err != nil {
				return err
			}
			client := asynq.NewClient(redisOpts(cfg))
			defer client.Close()
			return cli.EnqueueLedgerAudit(cmd.Context(), client, cmd.OutOrStdout())
		},
	})
	return cmd
}
