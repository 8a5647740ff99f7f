package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chainlens/taskpool"
	"github.com/chainlens/taskpool/httpapi"
	"github.com/chainlens/taskpool/telemetry"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Boot a default isolated pool behind the HTTP API and block",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	maxWorkers := viper.GetInt("max")
	if maxWorkers == 0 {
		maxWorkers = taskpool.DefaultIsolatedPoolConfig().Max
	}
	cfg, err := taskpool.IsolatedPoolConfig{
		Name:       "default",
		Max:        maxWorkers,
		Core:       viper.GetInt("core"),
		KeepActive: viper.GetDuration("keep-active"),
	}.Validate()
	if err != nil {
		return err
	}

	pool, err := taskpool.NewIsolatedPool(cfg)
	if err != nil {
		return fmt.Errorf("creating pool: %w", err)
	}
	defer pool.Shutdown()

	server := httpapi.New()
	if err := server.Register("default", pool, demoEntries()); err != nil {
		return fmt.Errorf("registering pool: %w", err)
	}

	var publisher *telemetry.Publisher
	if addr := viper.GetString("redis-addr"); addr != "" {
		publisher, err = telemetry.New(telemetry.Config{Addr: addr, Enabled: true})
		if err != nil {
			return fmt.Errorf("connecting telemetry: %w", err)
		}
		defer publisher.Close()
		go publisher.Run(ctx, "default", pool, 5*time.Second)
	}

	httpServer := &http.Server{Addr: viper.GetString("addr"), Handler: server.Router()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	slog.Info("taskpoold listening", "addr", httpServer.Addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// demoEntries registers the handful of entry functions the submit
// subcommand and smoke-tests can reach over HTTP without shipping
// arbitrary code: real deployments register their own.
func demoEntries() map[string]taskpool.EntryFunc {
	return map[string]taskpool.EntryFunc{
		"echo": func(argument any) (any, error) {
			return argument, nil
		},
		"sleep": func(argument any) (any, error) {
			ms, _ := argument.(float64)
			time.Sleep(time.Duration(ms) * time.Millisecond)
			return "done", nil
		},
	}
}
