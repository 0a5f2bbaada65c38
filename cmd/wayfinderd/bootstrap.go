package main

import (
	"log/slog"

	"wayfinder/internal/config"
	"wayfinder/internal/extractor"
	"wayfinder/internal/ingester"
	"wayfinder/internal/queue"
	"wayfinder/internal/resolver"
	"wayfinder/internal/workflow"
)

func buildStages(cfg *config.Config, store *queue.Store, logger *slog.Logger) workflow.StageSet {
	return workflow.StageSet{
		Ingester:  ingester.NewIngester(cfg, store, logger),
		Extractor: extractor.NewExtractor(cfg, store, logger),
		Resolver:  resolver.NewResolver(cfg, store, logger),
	}
}
