// Package remote is the JSON-over-HTTP accessor for the portal backend.
//
// Client issues GET, POST, PATCH and DELETE requests against paths relative
// to a base URL. Responses wrapped in the backend envelope
// {"success": bool, "data": ..., "message": string} are unwrapped so callers
// decode only the data. Any failure is reported as *Error, which carries the
// HTTP status (0 when no response arrived) so callers can tell "not found"
// apart from an unreachable backend with IsNotFound and IsTimeout.
//
// Each call runs under a per-attempt deadline and may be retried and guarded
// by a circuit breaker (package resilience). Calls are traced and measured
// through package observe.
package remote
