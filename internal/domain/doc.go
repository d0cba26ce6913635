// Package domain defines the core types of the netcompiler topology pipeline.
//
// The types fall into three groups.
//
// # Observations
//
// IPRecord, MACRecord and the packet types (IPPacket, DHCPPacket) describe what
// was seen on the wire. An IP address is identified by the pair (address, VLAN);
// untagged traffic carries DefaultVLAN.
//
// # Topology
//
// NetworkAggregate is the classful network an observed address belongs to.
// Machine is an inferred host, scored with a machine and a router confidence.
// A machine is a router when its router confidence is strictly greater than its
// machine confidence.
//
// # Bindings
//
// EnvironmentBinding, NetworkBinding, MachineBinding and InterfaceBinding
// correlate local entities with the identifiers the remote provisioning API
// returned for them. Connection is the resolved tuple used to attach an
// interface to its network.
//
// The package has no database or network dependencies.
package domain
