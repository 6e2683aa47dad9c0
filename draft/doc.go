// Package draft persists in-progress admission applications in two tiers.
//
// The backend is authoritative; a copy on the device (package localstore)
// is the safety net. Coordinator guarantees that:
//
//   - Save always writes the local copy, even when the backend write fails,
//     and reports the backend failure to the caller.
//   - Get prefers the backend and mirrors what it returns locally. If the
//     backend has no draft, or cannot be reached, the local copy is
//     returned. Only an unreachable backend with no local copy is an error.
//   - Clear always removes the local copy; backend failures are only logged.
//
// A local copy that no longer decodes is treated as absent and removed.
package draft
