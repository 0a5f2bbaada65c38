// Package enrich resolves extracted place candidates against the Google
// Places API. Resolution is best-effort: a failed lookup marks the single
// candidate as unresolved and the batch continues. Without credentials no
// network calls are made and every candidate is marked unresolved.
package enrich
