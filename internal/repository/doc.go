// Package repository defines the data access interface for netcompiler.
//
// The Repository is the observation store: it records what the capture
// adapters saw, holds the topology the inference engine derives from it, and
// keeps the bindings between local entities and the identifiers the remote
// provisioning API assigns. The implementation lives in the sqlite subpackage.
//
// # Insertion contract
//
// Every Insert* method is idempotent. It returns true when a new row was
// created and false when an equal row already existed; a uniqueness conflict
// is never an error. Errors are reserved for engine failures.
//
// # Lookups
//
// Lookups that find nothing return a nil result and a nil error, following
// the sql.ErrNoRows convention of the rest of the code base.
package repository
