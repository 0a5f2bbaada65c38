// Package media defines the evidence and candidate types shared across
// the extraction pipeline: transcript segments, OCR lines, evidence
// fragments, and the place candidates they support.
package media
