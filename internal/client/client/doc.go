// Package client contains the client-side building blocks that talk to the
// outside world.
//
// # Overview
//
// The package provides:
//  1. Collaborator contracts (Auditor, ContentClient) for the audit service
//     and the suggestion/content service, with HTTP implementations
//     (HTTPAuditClient, HTTPContentClient).
//  2. Local persistence bootstrap (InitDatabase, RunMigrations) wiring the
//     device SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Conditions are exposed as sentinel errors matched with errors.Is:
// ErrNoData for any audit failure, ErrFeatureNotAvailable when the content
// service refuses the caller's plan, ErrUnavailable for other collaborator
// failures.
//
// All operations accept context.Context and honor cancellation on top of
// the configured HTTP timeout.
package client
