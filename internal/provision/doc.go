// Package provision recreates an inferred topology in a remote environment.
//
// Provisioning runs as a fixed sequence of phases sharing one Context:
//   - environment: resolve the user and create a fresh environment
//   - networks: one switch per network aggregate, with a DHCP service on its VLAN
//   - machines: one workstation per machine, one unplugged interface per IP
//   - connect: plug every interface into the network of its IP
//   - routers: promote router machines
//
// A call that produces no result skips the item it was creating and
// everything that depends on it. A malformed call stops the run.
package provision
