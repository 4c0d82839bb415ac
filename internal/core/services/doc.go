// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The Resolver is the cache-first front of the upstream adapters; the
// hierarchy, statistics and vocabulary services build on it or on the
// stores directly.
package services
