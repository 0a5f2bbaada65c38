// Package extraction turns noisy transcript and OCR signals into a
// deduplicated, scored list of place candidates.
//
// Two paths produce candidates. The model path filters the transcript
// to a bounded, relevance-weighted subset, prompts a language model,
// and recovers structured output from whatever text comes back via an
// escalating parse chain (direct parse, substring extraction, remote
// repair). The heuristic path mines candidates directly from the text
// with phrase patterns and lexicons and needs no network at all. The
// Extractor decides per job which path applies and normalizes either
// path's output into one candidate list shape; the model path never
// fails a job, it only falls back.
package extraction
