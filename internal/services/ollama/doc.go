// Package ollama wraps the local Ollama generate API used for candidate
// extraction. The client retries transient failures (timeouts, transport
// errors, 5xx, empty bodies) with linear backoff and treats 4xx responses
// and malformed payloads as permanent.
package ollama
