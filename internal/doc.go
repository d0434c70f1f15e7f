// Package internal documents the event management server internals.
//
// The internal tree is organized by responsibility:
// - api: HTTP handlers, middleware, and routing
// - domain: business logic and domain models (users, events)
// - storage: database access and repositories (pgx + Postgres)
// - auth, audit, config, email, media, metrics, telemetry: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal
