// Package extractor implements the second workflow stage: it feeds a
// job's stored transcript and OCR evidence through the extraction
// engine and persists the resulting candidate list plus an audit
// record of which path produced it.
package extractor
