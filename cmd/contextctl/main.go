package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/amityadav/searchproxy/internal/core"
	appfx "github.com/amityadav/searchproxy/internal/fx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "contextctl",
		Short:        "Query the search proxy providers from the command line",
		SilenceUsage: true,
	}
	root.AddCommand(newQueryCmd(), newProvidersCmd())
	return root
}

func newQueryCmd() *cobra.Command {
	var providers []string

	cmd := &cobra.Command{
		Use:   "query <prompt...>",
		Short: "Build the context block for a prompt",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCore(cmd.Context(), func(c *core.ContextCore) error {
				text, err := c.BuildContext(cmd.Context(), strings.Join(args, " "), providers)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVarP(&providers, "providers", "p", nil, "comma-separated provider chain overriding the default")
	return cmd
}

func newProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List registered providers and the default chain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCore(cmd.Context(), func(c *core.ContextCore) error {
				out := cmd.OutOrStdout()
				for _, name := range c.Providers() {
					fmt.Fprintln(out, name)
				}
				fmt.Fprintf(out, "chain: %s\n", strings.Join(c.Chain(), " -> "))
				return nil
			})
		},
	}
}

// withCore builds the dependency graph without the HTTP server and runs fn
func withCore(ctx context.Context, fn func(*core.ContextCore) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var c *core.ContextCore
	app := fx.New(
		appfx.AppModules,
		fx.NopLogger,
		fx.Populate(&c),
	)
	if err := app.Err(); err != nil {
		return err
	}
	if err := app.Start(ctx); err != nil {
		return err
	}
	defer app.Stop(context.Background())

	return fn(c)
}
