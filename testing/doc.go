// Package testing provides test helpers for the secchub-planning library.
//
// It includes a testing.T-backed logger, a manually advanced clock for
// deterministic cooldown tests, a scripted in-memory backend service, and an
// embedded NATS server helper for exercising the KV-backed selection channel
// without external dependencies.
package testing
