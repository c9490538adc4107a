// Package api implements the HTTP transport layer: request decoding and
// validation, authentication context handling, and the mapping from
// internal errors to client-safe responses. Handlers delegate all business
// logic to the service layer and never talk to stores directly.
package api
