// Package types defines the core data model and interfaces shared across the
// secchub-planning library.
//
// It exists as a separate package so that internal packages can depend on the
// model without importing the root planning package, avoiding import cycles.
// The root package re-exports the commonly used names via type aliases.
package types
