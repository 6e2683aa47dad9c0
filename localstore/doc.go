// Package localstore is the device-local durable key/value store that backs
// the draft fallback copy.
//
// Every backend honours the same contract: values are opaque strings
// (callers store one JSON document per key), a missing key reads as
// ("", false, nil), and Remove of a missing key is not an error.
//
// Backends: Memory for tests and ephemeral use, File for one file per key
// in a directory, SQLite for a single database file, and Redis for
// deployments that keep drafts on a shared host.
package localstore
