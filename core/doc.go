// Package core provides the foundational domain types and interfaces shared by
// the tubeanalyst packages. It defines:
//
//   - Messages (immutable question/answer records with provenance)
//   - Session diagnostics (SessionInfo) and store wide counters (Stats)
//   - The SessionStore contract implemented by the session package
//   - Role based Content used to talk to language models
//
// Implementation concerns (eviction policy, model vendors, HTTP transport) are
// kept out of this package so callers can depend on small interfaces and swap
// concrete backends in tests.
package core
