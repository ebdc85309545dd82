// Package domain defines the core business entities for the bylaws
// assistant.
//
// This package is the innermost layer of the hexagonal architecture.
// It defines the fundamental types:
//
//   - Document: An uploaded bylaws PDF and its ingestion state
//   - Chunk: A retrievable unit of document text with its embedding
//   - Answer: A grounded answer with source citations
//   - ModificationRequest: A homeowner change-request record
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
