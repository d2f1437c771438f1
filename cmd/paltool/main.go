// paltool inspects the palette lookup shader and renders indexed images
// through it on the CPU.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/palshade/internal/assets"
	"github.com/Faultbox/palshade/internal/config"
	"github.com/Faultbox/palshade/internal/logger"
)

var (
	configPath string
	verbose    bool
	dataDirs   []string
	grfPaths   []string

	cfg = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "paltool",
	Short: "Palette lookup shader toolkit",
	Long: `paltool works with the ps_2_0 palette lookup shader and the indexed
images and palettes it draws.

Images are resolved against the configured asset directories, then the
working directory. PNG and BMP images must be paletted; SPR sprites use
their indexed frames.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.LoadFile(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		if verbose {
			cfg.Logging.Level = "debug"
		}
		if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ./palshade.yaml or user config dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringSliceVar(&dataDirs, "data", nil, "extra asset directories, highest priority last")
	rootCmd.PersistentFlags().StringSliceVar(&grfPaths, "grf", nil, "GRF archives searched after the asset directories")

	rootCmd.AddCommand(infoCmd, disasmCmd, renderCmd, rampCmd, paletteCmd, grfCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// newManager builds an asset manager over the configured directories and
// archives, plus any --data directories and --grf archives. Missing
// configured entries are skipped.
func newManager() (*assets.Manager, error) {
	m := assets.NewManager()
	for _, dir := range cfg.Data.AssetDirs {
		if err := m.AddDir(dir); err != nil {
			logger.Debug("skipping asset dir", zap.String("dir", dir), zap.Error(err))
		}
	}
	for _, path := range cfg.Data.GRFPaths {
		if err := m.AddArchive(path); err != nil {
			logger.Debug("skipping archive", zap.String("path", path), zap.Error(err))
		}
	}
	for _, dir := range dataDirs {
		if err := m.AddDir(dir); err != nil {
			m.Close()
			return nil, err
		}
	}
	for _, path := range grfPaths {
		if err := m.AddArchive(path); err != nil {
			m.Close()
			return nil, err
		}
	}
	return m, nil
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
