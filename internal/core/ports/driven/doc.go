// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): embedding and LLM providers, the vector
// index, text extraction, and the document and request stores.
package driven
