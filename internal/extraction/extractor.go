package extraction

import (
	"context"
	"log/slog"
	"strings"

	"wayfinder/internal/logging"
	"wayfinder/internal/media"
)

// Fallback reasons recorded when the model path is skipped or fails.
const (
	FallbackDisabled      = "model_disabled"
	FallbackCallFailed    = "ollama_call_failed"
	FallbackParseFailed   = "ollama_json_parse_failed"
	FallbackEmpty         = "ollama_empty_candidates"
	FallbackReportedError = "ollama_reported_error"
)

// ModelClient is the transport the model path needs: one prompt in, the
// model's raw text out. Transport failures surface as errors; they are
// never fatal to extraction.
type ModelClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Settings configures the extractor. Zero values fall back to package
// defaults.
type Settings struct {
	// ModelEnabled selects the language-model path when true.
	ModelEnabled bool
	// KeepPartialResults keeps model candidates even when the parsed
	// payload also carried an error field. Default is to fall back.
	KeepPartialResults bool
	// MaxSegments bounds the transcript subset sent to the model.
	MaxSegments int
	// MaxCandidates caps the output list on both paths.
	MaxCandidates int
	// MaxInputChars bounds the serialized transcript payload.
	MaxInputChars int
	// MaxPromptChars bounds the complete prompt.
	MaxPromptChars int
}

func (s Settings) withDefaults() Settings {
	if s.MaxSegments <= 0 {
		s.MaxSegments = DefaultMaxSegments
	}
	if s.MaxCandidates <= 0 {
		s.MaxCandidates = DefaultMaxCandidates
	}
	if s.MaxInputChars <= 0 {
		s.MaxInputChars = DefaultMaxInputChars
	}
	if s.MaxPromptChars <= 0 {
		s.MaxPromptChars = DefaultMaxPromptChars
	}
	return s
}

// Request carries one job's evidence into extraction.
type Request struct {
	Segments     []media.Segment
	OCRLines     []media.OCRLine
	LocationHint string
}

// Result is the normalized outcome of one extraction run. Candidates is
// never nil for a successful run; Method records which path produced
// it, and the model fields keep the exchange for auditability.
type Result struct {
	Candidates     []media.Candidate
	Method         media.ExtractionMethod
	ModelUsed      bool
	FallbackReason string
	Prompt         string
	RawOutput      string
	ParsedOutput   string
	SegmentCount   int
}

// Extractor decides per job whether to use the language-model path or
// the heuristic path and normalizes either path's output.
type Extractor struct {
	settings Settings
	client   ModelClient
	logger   *slog.Logger
}

// New constructs an Extractor. client may be nil when the model path is
// disabled.
func New(settings Settings, client ModelClient, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Extractor{settings: settings.withDefaults(), client: client, logger: logger}
}

// Extract runs the extraction state machine. The model path never
// returns an error to the caller; every model-path problem degrades to
// the heuristic path with the reason recorded on the result. The only
// errors surfaced are context cancellation.
func (e *Extractor) Extract(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	if e.settings.ModelEnabled && e.client != nil {
		result, err := e.modelAttempt(ctx, req)
		if err != nil {
			return Result{}, err
		}
		if result.FallbackReason == "" {
			return result, nil
		}
		e.logger.Warn("model extraction fell back to heuristics",
			logging.String("reason", result.FallbackReason),
			logging.Int("segment_count", result.SegmentCount),
		)
		heuristic := e.heuristicAttempt(req)
		heuristic.ModelUsed = result.ModelUsed
		heuristic.FallbackReason = result.FallbackReason
		heuristic.Prompt = result.Prompt
		heuristic.RawOutput = result.RawOutput
		heuristic.SegmentCount = result.SegmentCount
		return heuristic, nil
	}

	result := e.heuristicAttempt(req)
	if !e.settings.ModelEnabled {
		result.FallbackReason = FallbackDisabled
	}
	return result, nil
}

func (e *Extractor) heuristicAttempt(req Request) Result {
	set := Mine(req.Segments, req.OCRLines)
	candidates := Aggregate(set, req.LocationHint, e.settings.MaxCandidates)
	e.logger.Debug("heuristic extraction complete",
		logging.Int("mined", set.Len()),
		logging.Int("candidates", len(candidates)),
	)
	return Result{Candidates: candidates, Method: media.MethodHeuristic}
}

func (e *Extractor) modelAttempt(ctx context.Context, req Request) (Result, error) {
	filtered := FilterSegments(req.Segments, e.settings.MaxSegments)
	prompt := BuildPrompt(filtered, req.LocationHint, e.settings.MaxInputChars, e.settings.MaxPromptChars)
	result := Result{
		Method:       media.MethodModel,
		ModelUsed:    true,
		Prompt:       prompt,
		SegmentCount: len(filtered),
	}

	raw, err := e.client.Generate(ctx, prompt)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		result.FallbackReason = FallbackCallFailed
		return result, nil
	}
	result.RawOutput = raw

	parsed, ok := ParseModelResponse(raw)
	if !ok {
		parsed, ok = e.repair(ctx, raw)
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		if !ok {
			result.FallbackReason = FallbackParseFailed
			return result, nil
		}
	}
	result.ParsedOutput = marshalParsed(parsed)

	if reason := reportedError(parsed); reason != "" && !e.settings.KeepPartialResults {
		result.FallbackReason = FallbackReportedError
		return result, nil
	}

	rows := NormalizeCandidatePayload(media.Sanitize(parsed))
	candidates := e.hydrate(rows, req.LocationHint, prompt, result.ParsedOutput)
	if len(candidates) == 0 {
		result.FallbackReason = FallbackEmpty
		return result, nil
	}
	result.Candidates = candidates
	return result, nil
}

// repair issues the second model request asking for valid JSON and
// applies the local parse stages to its answer.
func (e *Extractor) repair(ctx context.Context, rawOutput string) (any, bool) {
	if err := ctx.Err(); err != nil {
		return nil, false
	}
	repaired, err := e.client.Generate(ctx, BuildRepairPrompt(rawOutput))
	if err != nil {
		return nil, false
	}
	return ParseModelResponse(repaired)
}

// reportedError extracts a model-reported error string from an
// otherwise parseable payload.
func reportedError(parsed any) string {
	object, ok := parsed.(map[string]any)
	if !ok {
		return ""
	}
	message, _ := object["error"].(string)
	return strings.TrimSpace(message)
}

// hydrate converts sanitized model rows into candidates, deduplicating
// case-insensitively and enforcing the output cap and confidence
// bounds.
func (e *Extractor) hydrate(rows []map[string]any, addressHint, prompt, parsedOutput string) []media.Candidate {
	hint := strings.TrimSpace(addressHint)
	seen := make(map[string]int)
	candidates := make([]media.Candidate, 0, len(rows))

	for _, row := range rows {
		name, _ := row["name"].(string)
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		key := media.Key(name)
		if idx, ok := seen[key]; ok {
			appendRowEvidence(&candidates[idx], row)
			continue
		}

		candidate := media.Candidate{
			Name:             name,
			Category:         media.CategoryOther,
			AddressHint:      hint,
			Confidence:       ClampConfidence(0.2),
			ExtractionMethod: media.MethodModel,
			ResolutionFailed: true,
			ModelPrompt:      prompt,
			ModelOutput:      parsedOutput,
		}
		if category, ok := row["category"].(string); ok {
			candidate.Category = media.ParseCategory(category)
		}
		if confidence, ok := row["confidence"].(float64); ok {
			candidate.Confidence = ClampConfidence(confidence)
		}
		if hintValue, ok := row["address_hint"].(string); ok && strings.TrimSpace(hintValue) != "" {
			candidate.AddressHint = strings.TrimSpace(hintValue)
		}
		appendRowEvidence(&candidate, row)
		if len(candidate.Evidence.Transcript) > 0 {
			candidate.StartMS = candidate.Evidence.Transcript[0].StartMS
			candidate.EndMS = candidate.Evidence.Transcript[0].EndMS
		}

		seen[key] = len(candidates)
		candidates = append(candidates, candidate)
		if len(candidates) == e.settings.MaxCandidates {
			break
		}
	}
	return candidates
}

func appendRowEvidence(candidate *media.Candidate, row map[string]any) {
	list, ok := row["evidence"].([]any)
	if !ok {
		return
	}
	for _, element := range list {
		entry, ok := element.(map[string]any)
		if !ok {
			continue
		}
		quote, _ := entry["quote"].(string)
		if strings.TrimSpace(quote) == "" {
			continue
		}
		evidence := media.TranscriptEvidence{Quote: quote}
		if start, ok := entry["start_ms"].(float64); ok {
			evidence.StartMS = int64(start)
		}
		if end, ok := entry["end_ms"].(float64); ok {
			evidence.EndMS = int64(end)
		}
		candidate.Evidence.Transcript = append(candidate.Evidence.Transcript, evidence)
	}
}
