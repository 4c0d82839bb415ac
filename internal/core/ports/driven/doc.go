// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Upstream: Fetches and normalises concepts from one SKOS source
//   - CacheStore: Persists positive and negative lookup results
//   - ConfigStore: Runtime configuration, with change notification
//
// # Optional Interfaces
//
//   - VocabularyStore: The static package vocabulary. Without it the
//     vocabulary endpoints report not implemented.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
