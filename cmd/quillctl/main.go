package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/sushihentaime/quill/internal/authservice"
	"github.com/sushihentaime/quill/internal/common"
)

func newRootCmd(out io.Writer) *cobra.Command {
	var (
		databaseURL = envOr("DATABASE_URL", common.DSN(
			envOr("POSTGRES_HOST", "localhost"),
			envOr("POSTGRES_PORT", "5432"),
			envOr("POSTGRES_USER", "postgres"),
			envOr("POSTGRES_PASSWORD", "postgres"),
			envOr("POSTGRES_DB", "quill"),
		))
		jwtSecret = envOr("JWT_SECRET", "")
	)

	root := &cobra.Command{
		Use:           "quillctl",
		Short:         "Operational commands for the quill API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	root.PersistentFlags().StringVar(&databaseURL, "database-url", databaseURL, "postgres connection string (env DATABASE_URL)")
	root.PersistentFlags().StringVar(&jwtSecret, "jwt-secret", jwtSecret, "token signing secret (env JWT_SECRET)")

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back schema migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := common.MigrateUp(databaseURL)
			if err != nil {
				return err
			}
			defer m.Close()

			version, dirty, err := m.Version()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d (dirty=%t)\n", version, dirty)
			return nil
		},
	}

	var steps int
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations (all of them unless --steps is set)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps < 0 {
				return fmt.Errorf("--steps must be zero or greater")
			}
			if err := common.MigrateDown(databaseURL, steps); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
	downCmd.Flags().IntVar(&steps, "steps", 0, "number of migrations to roll back, 0 for all")

	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Bearer token helpers",
	}

	issueCmd := &cobra.Command{
		Use:   "issue <subject>",
		Short: "Sign a bearer token for a user id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			issuer, err := authservice.NewIssuer(jwtSecret)
			if err != nil {
				return fmt.Errorf("%w (flag --jwt-secret or env JWT_SECRET)", err)
			}

			token, err := issuer.Issue(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	verifyCmd := &cobra.Command{
		Use:   "verify <token>",
		Short: "Print the subject of a bearer token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			issuer, err := authservice.NewIssuer(jwtSecret)
			if err != nil {
				return fmt.Errorf("%w (flag --jwt-secret or env JWT_SECRET)", err)
			}

			subject, err := issuer.Verify(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), subject)
			return nil
		},
	}

	migrateCmd.AddCommand(upCmd, downCmd)
	tokenCmd.AddCommand(issueCmd, verifyCmd)
	root.AddCommand(migrateCmd, tokenCmd)

	return root
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
