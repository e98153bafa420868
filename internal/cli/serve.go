package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rcliao/forgecore/internal/server"
)

func init() {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API for the UI panel",
		Run:   runServe,
	}
	serveCmd.Flags().String("addr", "", "Listen address (default from config)")

	mcpCmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve MCP over stdio",
		Run:   runMCP,
	}

	RootCmd.AddCommand(serveCmd, mcpCmd)
}

func runServe(cmd *cobra.Command, args []string) {
	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.Server.Addr
	}

	a := openApp()
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              addr,
		Handler:           server.NewHandler(a, logger.Named("http")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		exitErr("serve", err)
	}
	logger.Info("stopped")
}

func runMCP(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.ServeStdio(ctx, server.NewMCPServer(a, Version), os.Stdin, os.Stdout); err != nil {
		exitErr("mcp", err)
	}
}
