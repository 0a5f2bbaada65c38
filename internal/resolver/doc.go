// Package resolver implements the final workflow stage: it loads the
// extracted candidate list, resolves each name against the configured
// place search endpoints, and persists the enriched candidates back
// onto the job. Missing credentials or per-candidate misses mark
// candidates unresolved without failing the job.
package resolver
