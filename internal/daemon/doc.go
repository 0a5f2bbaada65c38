// Package daemon ties configuration, the queue store, and the workflow
// manager into a single lifecycle with flock-based locking to prevent
// multiple daemon instances from processing the same queue.
package daemon
