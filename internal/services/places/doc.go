// Package places wraps the Google Maps geocoding and text-search APIs used
// to resolve extracted place candidates. A lookup is a hit only when the
// HTTP status is 2xx and the payload status is "OK"; everything else is a
// miss, not an error, so one bad candidate never aborts a batch.
package places
