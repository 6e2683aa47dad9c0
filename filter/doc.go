// Package filter normalises loosely typed routine query filters.
//
// Routine queries are parameterised by department, semester and shift, plus
// any pass-through parameters the backend understands. Callers hand in a Raw
// map (decoded JSON, a query string, a form) and Sanitize turns it into a
// typed Filters value whose recognised fields are guaranteed valid.
//
// Sanitisation never fails. An invalid department or semester is dropped; an
// invalid shift is replaced by DefaultShift. Use Validate when a hard
// rejection is wanted instead.
package filter
