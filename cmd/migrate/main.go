package main

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"

	"kafila-ticketing/internal/config"
	"kafila-ticketing/internal/database/migrations"
	"kafila-ticketing/internal/logger"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

func main() {
	var dsn string

	log, err := logger.New(logger.Options{Output: os.Stdout})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Close()

	withRunner := func(fn func(r *migrations.Runner) error) error {
		sqldb, err := sql.Open("postgres", dsn)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		if err := sqldb.Ping(); err != nil {
			sqldb.Close()
			return fmt.Errorf("connect database: %w", err)
		}

		runner := migrations.NewRunner(bun.NewDB(sqldb, pgdialect.New()), log)
		defer runner.Close()
		return fn(runner)
	}

	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Manage the ticketing database schema",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			godotenv.Load()
			if dsn == "" {
				dsn = config.Load().Database.DSN
			}
		},
	}
	root.PersistentFlags().StringVar(&dsn, "dsn", "", "postgres DSN (default POSTGRES_DSN)")

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withRunner(func(r *migrations.Runner) error { return r.MigrateUp() })
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back every migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withRunner(func(r *migrations.Runner) error { return r.MigrateDown() })
			},
		},
		&cobra.Command{
			Use:   "to <version>",
			Short: "Migrate up or down to a version",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				version, err := strconv.ParseUint(args[0], 10, 32)
				if err != nil {
					return fmt.Errorf("bad version %q", args[0])
				}
				return withRunner(func(r *migrations.Runner) error { return r.MigrateTo(uint(version)) })
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withRunner(func(r *migrations.Runner) error {
					v, dirty, err := r.Version()
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "version %d dirty=%t\n", v, dirty)
					return nil
				})
			},
		},
	)

	if err := root.Execute(); err != nil {
		log.Error("MIGRATE", err.Error())
		log.Close()
		os.Exit(1)
	}
}
