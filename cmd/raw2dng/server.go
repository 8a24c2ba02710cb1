package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kalambet/raw2dng/internal/api"
	"github.com/kalambet/raw2dng/internal/prefs"
	"github.com/kalambet/raw2dng/internal/watch"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the preferences over a loopback HTTP API",
	Long: `Serve the preferences over a loopback HTTP API for the GUI front end.

Requests to /preferences need "Authorization: Bearer <token>". The token
comes from RAW2DNG_API_TOKEN; if unset, a random one is generated and
printed at startup.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		noWatch, _ := cmd.Flags().GetBool("no-watch")
		addr, _ := cmd.Flags().GetString("addr")
		if addr != "" {
			cfg.Server.Addr = addr
			if err := cfg.Validate(); err != nil {
				return err
			}
		}

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		store, err := openStore()
		if err != nil {
			return err
		}
		return runServer(ctx, store, !noWatch)
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the preferences as MCP tools over stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext(cmd.Context())
		defer stop()

		store, err := openStore()
		if err != nil {
			return err
		}

		mcpSrv := api.NewMCPServer(api.MCPDeps{Prefs: store, Version: version})
		stdioSrv := server.NewStdioServer(mcpSrv)
		slog.Info("MCP server started (stdio transport)", "path", store.Path())
		if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("MCP stdio server: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from RAW2DNG_SERVER_ADDR or 127.0.0.1:4100)")
	serveCmd.Flags().Bool("no-watch", false, "do not reload when the file changes on disk")
}

func runServer(ctx context.Context, store *prefs.Store, watchFile bool) error {
	token := cfg.Server.Token
	if token == "" {
		token = uuid.New().String()
		printStatus("API token", "%s", token)
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.NewHandler(api.Deps{Prefs: store, Token: token}),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		printStatus("Preferences", "%s", store.Path())
		slog.Info("raw2dng listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if watchFile {
		w := watch.New(store.Path(), store)
		g.Go(func() error {
			return w.Run(gctx)
		})
	}

	return g.Wait()
}
