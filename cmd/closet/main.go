package main

import (
	"context"
	"log"

	"github.com/vbonduro/closet/internal/app"
	"github.com/vbonduro/closet/internal/config"
	"github.com/vbonduro/closet/internal/db"
	"github.com/vbonduro/closet/internal/imageprep"
	"github.com/vbonduro/closet/internal/inventory"
	"github.com/vbonduro/closet/internal/logging"
	"github.com/vbonduro/closet/internal/service"
	"github.com/vbonduro/closet/internal/store"
	"github.com/vbonduro/closet/internal/web"
)

func main() {
	cfg := config.Load()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	if err := cfg.Validate(); err != nil {
		logger.Error("configuration error", "error", err)
		return
	}

	flush := app.InitSentry(cfg, logger)
	defer flush()

	ctx := context.Background()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	photoStg, err := app.NewPhotoStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to initialize photo store", "error", err)
		return
	}

	prep := imageprep.New()
	gw, err := app.NewGateway(ctx, cfg, photoStg, prep, logger)
	if err != nil {
		logger.Error("failed to initialize gateway", "error", err)
		return
	}

	seed, err := app.ReadSeed(cfg)
	if err != nil {
		logger.Error("failed to load seed", "error", err)
		return
	}
	closet := inventory.New(store.NewEntryStore(database, cfg.StorageQuotaBytes), prep, logger, inventory.WithSeed(seed))
	if err := closet.Load(ctx); err != nil {
		logger.Error("failed to load closet", "error", err)
		return
	}
	logger.Info("closet loaded", "items", closet.Len())

	closetService := service.NewClosetService(closet, gw, prep, logger)
	outfitService := service.NewOutfitService(closet, gw, logger)
	server := web.NewServer(closetService, outfitService, photoStg, logger, web.WithMaxVisible(cfg.MaxVisibleItems))

	if err := server.ListenAndServe(cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
	}
}
