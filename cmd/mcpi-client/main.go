// mcpid - MCP service endpoint with MCPI discovery
// License: MIT
//
// Copyright (c) 2026 mcpid contributors

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/freitascorp/mcpid/pkg/client"
	"github.com/freitascorp/mcpid/pkg/discovery"
)

// ------------------------------------------------------------------
// Global flags
// ------------------------------------------------------------------

var (
	flagDomain    string
	flagBaseURL   string
	flagPlugin    string
	flagTransport string
	flagDebug     bool
)

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if flagDebug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// ------------------------------------------------------------------
// Root command
// ------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mcpi-client",
		Short: "mcpi-client — exercise an MCP endpoint",
		Long: `mcpi-client discovers an MCP endpoint (via DNS TXT or an explicit URL)
and drives a scripted sequence against it: initialize, resource and
tool listings, a batch, and one call per advertised tool operation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClient()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagDomain, "domain", "", "Domain to discover via DNS TXT record")
	root.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "Explicit endpoint base URL (skips DNS)")
	root.Flags().StringVar(&flagPlugin, "plugin", "", "Restrict tool calls to one plugin")
	root.Flags().StringVar(&flagTransport, "transport", "http", "Transport to use: http or ws")
	root.PersistentFlags().BoolVarP(&flagDebug, "debug", "d", false, "Enable debug logging")

	root.AddCommand(newDiscoverCmd())

	return root
}

func newDiscoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discover",
		Short: "Resolve the MCP TXT record for a domain and print the endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagDomain == "" {
				return errors.New("--domain is required")
			}

			resolver := discovery.NewResolver(newLogger())
			info, err := resolver.Discover(cmd.Context(), flagDomain)
			if err != nil {
				return err
			}

			base := discovery.BaseURL(info.Endpoint)
			fmt.Printf("Version:    %s\n", info.Version)
			fmt.Printf("Endpoint:   %s\n", info.Endpoint)
			fmt.Printf("WebSocket:  %s\n", discovery.WebSocketURL(base))
			fmt.Printf("Streamable: %s\n", discovery.StreamableURL(base))
			return nil
		},
	}
}

// ------------------------------------------------------------------
// Driver run
// ------------------------------------------------------------------

func runClient() error {
	logger := newLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	base, err := resolveBaseURL(ctx, logger)
	if err != nil {
		return err
	}

	transport, err := openTransport(ctx, base, logger)
	if err != nil {
		return err
	}
	defer transport.Close()

	driver := client.NewDriver(base, transport, os.Stdout, logger)
	if flagPlugin != "" {
		driver.RestrictTool(flagPlugin)
	}
	return driver.Run(ctx)
}

func resolveBaseURL(ctx context.Context, logger *slog.Logger) (string, error) {
	switch {
	case flagBaseURL != "":
		return flagBaseURL, nil
	case flagDomain != "":
		resolver := discovery.NewResolver(logger)
		info, err := resolver.Discover(ctx, flagDomain)
		if err != nil {
			return "", fmt.Errorf("discovery failed: %w", err)
		}
		return discovery.BaseURL(info.Endpoint), nil
	default:
		return "", errors.New("either --domain or --base-url is required")
	}
}

func openTransport(ctx context.Context, base string, logger *slog.Logger) (client.Transport, error) {
	switch flagTransport {
	case "ws":
		return client.DialWS(ctx, discovery.WebSocketURL(base), logger)
	case "http":
		t := client.NewHTTPTransport(discovery.StreamableURL(base), logger)
		if err := t.OpenStream(ctx); err != nil {
			return nil, err
		}
		return t, nil
	default:
		return nil, fmt.Errorf("unknown transport %q (use http or ws)", flagTransport)
	}
}
