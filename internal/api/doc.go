// Package api implements the JSON HTTP surface of the service.
//
// Routes live on a stdlib ServeMux with method+path patterns. All API
// routes sit behind the middleware chain (recovery, request ID, request
// logging, per-IP rate limiting); the /health and /ready probes are
// registered outside the chain so orchestrator probes are never rate
// limited. Responses are encoded buffer-first so a failed encode can
// still produce a clean 500.
package api
