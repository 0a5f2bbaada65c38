// Command wayfinder is the operator CLI: it queues travel videos for
// processing, inspects job state and extracted places, and manages the
// shared SQLite queue the daemon works from.
package main
