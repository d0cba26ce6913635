package domain

// Snapshot is a read-only dump of the observation store
type Snapshot struct {
	IPs               []IPRecord          `json:"ips" yaml:"ips"`
	MACs              []MACRecord         `json:"macs" yaml:"macs"`
	Hosts             []string            `json:"hosts,omitempty" yaml:"hosts,omitempty"`
	UserAgents        []string            `json:"user_agents,omitempty" yaml:"user_agents,omitempty"`
	Servers           []string            `json:"servers,omitempty" yaml:"servers,omitempty"`
	Packets           []PacketRecord      `json:"packets" yaml:"packets"`
	Networks          []NetworkAggregate  `json:"networks" yaml:"networks"`
	Machines          []Machine           `json:"machines" yaml:"machines"`
	Environment       *EnvironmentBinding `json:"environment,omitempty" yaml:"environment,omitempty"`
	NetworkBindings   []NetworkBinding    `json:"network_bindings,omitempty" yaml:"network_bindings,omitempty"`
	MachineBindings   []MachineBinding    `json:"machine_bindings,omitempty" yaml:"machine_bindings,omitempty"`
	InterfaceBindings []InterfaceBinding  `json:"interface_bindings,omitempty" yaml:"interface_bindings,omitempty"`
}

// VLANCounts returns the number of observed IPs per VLAN
func (s *Snapshot) VLANCounts() map[int]int {
	counts := make(map[int]int)
	for _, ip := range s.IPs {
		counts[ip.VLAN]++
	}
	return counts
}
