// Package backend defines the boundary to the authoritative section and
// assignment services.
//
// The engine consumes the Service interface; the exact backend schema is not
// part of the engine's design. Client implements Service over the REST
// backend, converting raw payloads into the typed model at a single
// parse/validate boundary so invalid payloads surface as typed errors here
// instead of as silently-wrong fields deep inside business logic.
package backend
