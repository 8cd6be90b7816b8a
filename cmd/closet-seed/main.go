// Command closet-seed builds the starter closet from a folder of photos.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/vbonduro/closet/internal/app"
	"github.com/vbonduro/closet/internal/config"
	"github.com/vbonduro/closet/internal/imageprep"
	"github.com/vbonduro/closet/internal/logging"
	"github.com/vbonduro/closet/internal/seed"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "closet-seed",
		Short:         "Manage the starter closet catalogue",
		SilenceUsage:  true,
	}
	root.AddCommand(newImportCmd())
	return root
}

func newImportCmd() *cobra.Command {
	var dir, out string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Classify a folder of photos and write a seed file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runImport(ctx, dir, out)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory of garment photos")
	cmd.Flags().StringVar(&out, "out", "seed.json", "seed file to write")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}

func runImport(ctx context.Context, dir, out string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, cleanup, err := logging.New(cfg.LogLevel, "text", cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer cleanup()

	photos, err := app.NewPhotoStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize photo store: %w", err)
	}
	prep := imageprep.New()
	gw, err := app.NewGateway(ctx, cfg, photos, prep, logger)
	if err != nil {
		return err
	}

	items, skipped, err := seed.NewImporter(gw, photos, prep, logger).Import(ctx, dir)
	if err != nil {
		return err
	}
	if err := seed.WriteFile(out, items); err != nil {
		return err
	}

	logger.Info("seed written", "path", out, "items", len(items), "skipped", len(skipped))
	for _, s := range skipped {
		logger.Info("skipped", "file", s.File, "reason", s.Reason)
	}
	return nil
}
