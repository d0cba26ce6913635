// Package dispatch routes named provisioning operations to HTTP requests.
//
// The Catalog is the closed set of operations the remote API supports: each
// entry names a path template, an HTTP verb and the body fields it accepts.
// A Dispatcher hands every call to a chain of Handlers. Each handler owns one
// resource group (environments, machines, networks), splits the caller's
// arguments into path parameters and body fields, injects the current
// environment id and forwards the request to the Caller. A call no handler
// recognises is a configuration defect and fails with ErrUnknownOperation.
package dispatch
