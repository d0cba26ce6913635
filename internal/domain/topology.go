package domain

import "fmt"

// Role is the machine role sent to the provisioning API
type Role string

const (
	RoleWorkstation Role = "workstation"
	RoleRouter      Role = "router"
)

// NetworkAggregate is a classful network containing at least one observed IP
type NetworkAggregate struct {
	ID      int64  `json:"id" yaml:"id"`
	Network string `json:"network" yaml:"network"`
	Mask    string `json:"mask" yaml:"mask"`
	VLAN    int    `json:"vlan" yaml:"vlan"`
}

// String returns the aggregate in network/mask@vlan form
func (n NetworkAggregate) String() string {
	return fmt.Sprintf("%s/%s@%d", n.Network, n.Mask, n.VLAN)
}

// Machine is an inferred host. Key is a MAC address, or a synthetic
// "<macIndex>:<machineIndex>" key for machines split off a router.
type Machine struct {
	ID                int64   `json:"id" yaml:"id"`
	Key               string  `json:"key" yaml:"key"`
	MachineConfidence float64 `json:"machine_confidence" yaml:"machine_confidence"`
	RouterConfidence  float64 `json:"router_confidence" yaml:"router_confidence"`
}

// IsRouter reports whether the machine is classified as a router
func (m Machine) IsRouter() bool {
	return m.RouterConfidence > m.MachineConfidence
}

// Role returns the role the machine is provisioned with at the end of a run
func (m Machine) Role() Role {
	if m.IsRouter() {
		return RoleRouter
	}
	return RoleWorkstation
}

// MachineIPs is a machine together with the IPs it owns
type MachineIPs struct {
	Machine Machine    `json:"machine" yaml:"machine"`
	IPs     []IPRecord `json:"ips" yaml:"ips"`
}

// SyntheticMachineKey builds the key of a machine split off a router
func SyntheticMachineKey(macIndex, machineIndex int) string {
	return fmt.Sprintf("%d:%d", macIndex, machineIndex)
}
