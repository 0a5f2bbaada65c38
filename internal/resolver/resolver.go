package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"wayfinder/internal/config"
	"wayfinder/internal/enrich"
	"wayfinder/internal/logging"
	"wayfinder/internal/media"
	"wayfinder/internal/queue"
	"wayfinder/internal/services"
	"wayfinder/internal/services/places"
	"wayfinder/internal/stage"
)

// Resolver enriches extracted candidates with real-world place data.
type Resolver struct {
	cfg      *config.Config
	store    *queue.Store
	logger   *slog.Logger
	enricher *enrich.Resolver
	hasCreds bool
}

// NewResolver constructs the resolution stage handler using default dependencies.
func NewResolver(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Resolver {
	client := places.NewClient(
		cfg.Places.APIKey,
		places.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Places.RequestTimeout) * time.Second}),
		places.WithEndpoints(cfg.Places.GeocodeURL, cfg.Places.SearchURL),
		places.WithBiasRadius(cfg.Places.BiasRadiusMeters),
	)
	enricher := enrich.New(client, cfg.Places.ResolveConcurrency, logger)
	return NewResolverWithDependencies(cfg, store, logger, enricher, client.HasCredentials())
}

// NewResolverWithDependencies allows injecting the enricher (used in tests).
func NewResolverWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, enricher *enrich.Resolver, hasCreds bool) *Resolver {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "resolver"))
	}
	return &Resolver{cfg: cfg, store: store, logger: stageLogger, enricher: enricher, hasCreds: hasCreds}
}

func (r *Resolver) Prepare(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, r.logger)
	job.InitProgress("Resolving", "Preparing place resolution")
	logger.Info("starting resolution preparation",
		logging.Bool("credentials_configured", r.hasCreds),
	)
	return nil
}

func (r *Resolver) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, r.logger)

	candidates, err := decodeCandidates(job.CandidatesJSON)
	if err != nil {
		return services.Wrap(services.ErrValidation, "resolve", "decode candidates", "", err)
	}

	resolved := r.enricher.Resolve(ctx, candidates, job.LocationHint)
	if resolved == nil {
		resolved = []media.Candidate{}
	}
	job.CandidatesJSON = string(media.SafeMarshal(resolved))

	resolvedCount := 0
	for i := range resolved {
		if !resolved[i].ResolutionFailed {
			resolvedCount++
		}
	}
	job.SetProgress("Resolving", fmt.Sprintf("Resolved %d of %d candidates", resolvedCount, len(resolved)), 100)

	logger.Info("resolution complete",
		logging.Int("candidates", len(resolved)),
		logging.Int("resolved", resolvedCount),
	)
	return nil
}

func (r *Resolver) HealthCheck(ctx context.Context) stage.Health {
	if !r.hasCreds {
		return stage.Health{Name: "resolver", Ready: true, Detail: "no API credentials; candidates will be marked unresolved"}
	}
	return stage.Healthy("resolver")
}

func decodeCandidates(raw string) ([]media.Candidate, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var candidates []media.Candidate
	if err := json.Unmarshal([]byte(raw), &candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}
