// Package textutil provides text canonicalization for the extraction
// pipeline.
//
// Every transcript segment and OCR line passes through Normalize before
// pattern matching, deduplication, or scoring. Normalization folds
// Unicode to a plain ASCII-ish form, strips characters outside the set
// a place name can contain, and collapses whitespace, so that the same
// place spelled with different marks or spacing keys to one candidate.
package textutil
