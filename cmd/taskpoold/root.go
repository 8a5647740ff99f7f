package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chainlens/taskpool"
)

var cfgFile string

// Execute runs the root command with the provided context.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "taskpoold",
		Short: "Run and query a bounded-concurrency task pool",
		Long: `taskpoold hosts a taskpool.IsolatedPool behind an HTTP surface
for health checks, Prometheus scraping, stats, and named-entry task
submission. It is a reference host for the taskpool library, not a
requirement for using it.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return initConfig(cmd) },
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.taskpoold.yaml)")
	root.PersistentFlags().String("addr", ":8080", "HTTP listen address")
	root.PersistentFlags().Int("max", 0, "max concurrently active workers (default 2x NumCPU)")
	root.PersistentFlags().Int("core", 0, "number of core (never-reaped) workers")
	root.PersistentFlags().Duration("keep-active", 0, "idle TTL for reapable workers (default 2m)")
	root.PersistentFlags().String("redis-addr", "", "Redis address for stats telemetry (empty disables telemetry)")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	viper.BindPFlag("addr", root.PersistentFlags().Lookup("addr"))
	viper.BindPFlag("max", root.PersistentFlags().Lookup("max"))
	viper.BindPFlag("core", root.PersistentFlags().Lookup("core"))
	viper.BindPFlag("keep-active", root.PersistentFlags().Lookup("keep-active"))
	viper.BindPFlag("redis-addr", root.PersistentFlags().Lookup("redis-addr"))
	viper.BindPFlag("verbose", root.PersistentFlags().Lookup("verbose"))

	root.AddCommand(newRunCmd())
	root.AddCommand(newSubmitCmd())
	root.AddCommand(newStatsCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func initConfig(cmd *cobra.Command) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".taskpoold")
	}

	viper.SetEnvPrefix("TASKPOOLD")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	setupLogging(cmd)
	return nil
}

func setupLogging(cmd *cobra.Command) {
	verbose, _ := cmd.Flags().GetBool("verbose")

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))

	taskpool.SetDefaultLogger(&slogBridge{})
}

// slogBridge adapts taskpool.Logger onto the process-wide slog.Logger,
// so a CLI user gets one consistent log stream instead of two.
type slogBridge struct {
	attrs []any
}

func (b *slogBridge) log(level slog.Level, msg string, fields ...taskpool.Field) {
	args := append([]any{}, b.attrs...)
	for _, f := range fields {
		args = append(args, f.Key, f.Value)
	}
	slog.Default().Log(context.Background(), level, msg, args...)
}

func (b *slogBridge) Debug(msg string, fields ...taskpool.Field) { b.log(slog.LevelDebug, msg, fields...) }
func (b *slogBridge) Info(msg string, fields ...taskpool.Field)  { b.log(slog.LevelInfo, msg, fields...) }
func (b *slogBridge) Warn(msg string, fields ...taskpool.Field)  { b.log(slog.LevelWarn, msg, fields...) }
func (b *slogBridge) Error(msg string, fields ...taskpool.Field) { b.log(slog.LevelError, msg, fields...) }

func (b *slogBridge) With(fields ...taskpool.Field) taskpool.Logger {
	next := &slogBridge{attrs: append([]any{}, b.attrs...)}
	for _, f := range fields {
		next.attrs = append(next.attrs, f.Key, f.Value)
	}
	return next
}
