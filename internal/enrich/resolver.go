package enrich

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"wayfinder/internal/logging"
	"wayfinder/internal/media"
	"wayfinder/internal/services/places"
)

// DefaultConcurrency bounds parallel lookups per job.
const DefaultConcurrency = 4

// PlacesAPI is the subset of the places client the resolver needs.
type PlacesAPI interface {
	HasCredentials() bool
	Geocode(ctx context.Context, address string) (places.GeocodeResult, bool, error)
	TextSearch(ctx context.Context, query string, bias *places.Location) (places.PlaceResult, bool, error)
}

// Resolver enriches candidates with canonical place data.
type Resolver struct {
	client      PlacesAPI
	concurrency int
	logger      *slog.Logger
}

// New constructs a Resolver. A nil logger is replaced with a no-op logger.
func New(client PlacesAPI, concurrency int, logger *slog.Logger) *Resolver {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Resolver{
		client:      client,
		concurrency: concurrency,
		logger:      logger.With(logging.String(logging.FieldComponent, "enrich")),
	}
}

// Resolve looks up each candidate and returns the batch in the original
// order. Every candidate comes back with ResolutionFailed set one way or
// the other; lookup errors never abort the batch.
func (r *Resolver) Resolve(ctx context.Context, candidates []media.Candidate, locationHint string) []media.Candidate {
	out := make([]media.Candidate, len(candidates))
	copy(out, candidates)
	if len(out) == 0 {
		return out
	}

	if r.client == nil || !r.client.HasCredentials() {
		r.logger.Info("skipping place resolution", logging.String("reason", "no credentials"),
			logging.Int("candidates", len(out)))
		for i := range out {
			out[i].ResolutionFailed = true
		}
		return out
	}

	bias := r.geocodeHint(ctx, locationHint)

	sem := make(chan struct{}, r.concurrency)
	var wg sync.WaitGroup
	for i := range out {
		if ctx.Err() != nil {
			out[i].ResolutionFailed = true
			continue
		}
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			r.resolveOne(ctx, &out[idx], bias)
		}(i)
	}
	wg.Wait()
	return out
}

func (r *Resolver) geocodeHint(ctx context.Context, locationHint string) *places.Location {
	locationHint = strings.TrimSpace(locationHint)
	if locationHint == "" {
		return nil
	}
	result, found, err := r.client.Geocode(ctx, locationHint)
	if err != nil {
		r.logger.Warn("location hint geocode failed",
			logging.String("hint", locationHint), logging.Error(err))
		return nil
	}
	if !found {
		r.logger.Debug("location hint had no geocode match", logging.String("hint", locationHint))
		return nil
	}
	loc := result.Location
	return &loc
}

func (r *Resolver) resolveOne(ctx context.Context, candidate *media.Candidate, bias *places.Location) {
	name := strings.TrimSpace(candidate.Name)
	if name == "" {
		candidate.ResolutionFailed = true
		return
	}

	result, found, err := r.client.TextSearch(ctx, name, bias)
	if err != nil {
		r.logger.Warn("place lookup failed", logging.String("name", name), logging.Error(err))
		candidate.ResolutionFailed = true
		return
	}
	if !found {
		candidate.ResolutionFailed = true
		return
	}

	lat := result.Location.Latitude
	lng := result.Location.Longitude
	candidate.ResolvedName = result.Name
	candidate.PlaceID = result.PlaceID
	candidate.FormattedAddress = result.FormattedAddress
	candidate.Latitude = &lat
	candidate.Longitude = &lng
	candidate.MarkResolutionOutcome()
}
