// Package driving provides interfaces for application entry points
// (primary/inbound ports) used by the HTTP API and CLI.
package driving
