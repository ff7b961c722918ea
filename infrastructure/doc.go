// Package infrastructure provides concrete implementations of the interfaces
// defined in the core package. These implementations handle external concerns
// such as persistence, search, scraping, LLM access, caching and logging.
//
// The infrastructure package is organized by technical concern:
//
// - storage/mongo: Blog document store on the MongoDB driver
// - storage/postgres: Project and account lookups on lib/pq
// - search/serper: Web search provider client
// - scraper/readability: Article extraction (goquery + readability + markdown)
// - llm/openai: OpenAI-compatible chat-completions client
// - cache/memory: In-memory cache implementation
// - cache/redis: Redis-based cache implementation
// - activity/sqlite: Best-effort request activity log
// - http/standard: Standard library HTTP client with retry logic
// - logger/logrus: Structured logger implementation
//
// # Design Philosophy
//
// Infrastructure components are designed to be:
// - Pluggable: Easy to swap implementations
// - Configurable: Accept configuration objects
// - Testable: Include both unit and integration tests
// - Production-ready: Include retries, timeouts, and error handling
package infrastructure
