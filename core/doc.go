// Package core contains the business logic for the BlogForge API.
// It is designed to be framework-agnostic and can be used independently
// of any web framework or infrastructure concerns.
//
// The core package is organized into several sub-packages:
//
// - domain: Contains pure domain models (Outline, SubsectionResult, SourcesRecord, etc.)
// - sources: Streaming source-collection pipeline (collector, aggregator, committer)
// - validation: Pre-flight request validation gate
// - errors: Custom error types for better error handling
// - interfaces: Contracts for external dependencies (storage, search, LLM, cache, logger)
//
// # Design Principles
//
// The core package follows clean architecture principles:
// - No external framework dependencies
// - All external dependencies are injected via interfaces
// - Business logic is testable in isolation
// - Domain models are free from persistence concerns
//
// # Usage Example
//
//	import (
//	    "blogforge-app-api/core/interfaces"
//	    "blogforge-app-api/core/sources"
//	)
//
//	// Create dependencies
//	deps := interfaces.Dependencies{
//	    Cache:      myCache,      // implements interfaces.Cache
//	    HTTPClient: myHTTPClient, // implements interfaces.HTTPClient
//	    Logger:     myLogger,     // implements interfaces.Logger
//	}
//
//	// Create the collector
//	collector := sources.NewCollector(deps, searchProvider, scraper, chatClient, sources.DefaultCollectorConfig())
//
//	// Run a collection and consume events
//	events := collector.Collect(ctx, sources.CollectRequest{...})
//	for ev := range events {
//	    // forward to the client
//	}
package core
