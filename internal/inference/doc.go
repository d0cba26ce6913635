// Package inference derives a network topology from the observation store.
//
// Run performs two passes. The network pass assigns every observed IP to its
// classful aggregate. The machine pass walks the observed MAC addresses,
// scores each by the number of IPs it was seen with, and either records a
// plain machine or splits it into a router plus one synthetic single-IP
// machine per non-gateway address.
package inference
