// Package services provides shared infrastructure for Wayfinder's
// service clients and workflow stages: the error classification
// markers used to decide how a failed job is persisted, and context
// annotation helpers that carry job identifiers through stage code.
package services
