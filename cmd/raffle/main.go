package main

import (
	"fmt"
	"os"

	"raffle/internal/config"
	"raffle/internal/logger"
	"raffle/internal/program"
	"raffle/internal/storage"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
)

const programName = "raffle"

var (
	globalFlags = struct {
		debug bool
	}{}
	configFile string
)

func maxprocsPrintf(format string, v ...any) {
	logger.Info(fmt.Sprintf(format, v...), zap.String("component", programName))
}

// openProgram opens the configured storage and builds a program over it. The caller closes
// the storage.
func openProgram(cfg *config.Config, opts ...program.OptionFunc) (*program.Program, storage.Storage, error) {
	programID, err := cfg.ProgramIdentity()
	if err != nil {
		return nil, nil, err
	}

	logger.Debug("opening storage...", zap.String("plugin", cfg.StoragePlugin), zap.String("path", cfg.DatabasePath))
	s, err := storage.Open(cfg.StoragePlugin, cfg.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening storage: %w", err)
	}
	logger.Debug("opening storage... done")

	opts = append([]program.OptionFunc{
		program.WithProgramID(programID),
		program.WithTimeBuffer(cfg.TimeBuffer),
		program.WithRent(cfg.Rent),
	}, opts...)
	return program.New(s, opts...), s, nil
}

func mustConfig(cmd *cobra.Command) *config.Config {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		fmt.Fprintln(os.Stderr, "no config found in context")
		os.Exit(1)
	}
	return cfg
}

func main() {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Trust-minimized raffle program",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().
		BoolVarP(&globalFlags.debug, "debug", "D", false, "enable debug logging")
	rootCmd.PersistentFlags().
		StringVar(&configFile, "config", "", "path to config file")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if globalFlags.debug {
			cfg.Logger.Level = "debug"
		}
		if err := logger.Initialize(cfg.Logger); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if _, err := maxprocs.Set(maxprocs.Logger(maxprocsPrintf)); err != nil {
			return err
		}

		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	}

	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(depositCommand())
	rootCmd.AddCommand(provisionCommand())
	rootCmd.AddCommand(createCommand())
	rootCmd.AddCommand(buyCommand())
	rootCmd.AddCommand(revealCommand())
	rootCmd.AddCommand(claimCommand())
	rootCmd.AddCommand(closeCommand())
	rootCmd.AddCommand(showCommand())
	rootCmd.AddCommand(listCommand())

	err := rootCmd.Execute()
	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
