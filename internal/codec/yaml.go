package codec

import (
	"fmt"
	"io"

	"netcompiler/internal/domain"

	"gopkg.in/yaml.v3"
)

// YAMLCodec exports a topology-oriented view of the snapshot
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// yamlTopology is the document layout of the YAML export
type yamlTopology struct {
	Environment *yamlEnvironment `yaml:"environment,omitempty"`
	Networks    []yamlNetwork    `yaml:"networks"`
	Machines    []yamlMachine    `yaml:"machines"`
	Observed    yamlObserved     `yaml:"observed"`
}

type yamlEnvironment struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	RunID string `yaml:"run_id,omitempty"`
}

type yamlNetwork struct {
	Network  string `yaml:"network"`
	Mask     string `yaml:"mask"`
	VLAN     int    `yaml:"vlan"`
	RemoteID string `yaml:"remote_id,omitempty"`
}

type yamlMachine struct {
	Key               string   `yaml:"key"`
	Role              string   `yaml:"role"`
	MachineConfidence float64  `yaml:"machine_confidence"`
	RouterConfidence  float64  `yaml:"router_confidence"`
	IPs               []string `yaml:"ips,omitempty"`
	RemoteID          string   `yaml:"remote_id,omitempty"`
}

type yamlObserved struct {
	IPs        int         `yaml:"ips"`
	MACs       int         `yaml:"macs"`
	Packets    int         `yaml:"packets"`
	VLANs      map[int]int `yaml:"vlans"`
	Hosts      []string    `yaml:"hosts,omitempty"`
	UserAgents []string    `yaml:"user_agents,omitempty"`
	Servers    []string    `yaml:"servers,omitempty"`
}

// Export exports snapshot data to YAML
func (c *YAMLCodec) Export(snap *domain.Snapshot, w io.Writer) error {
	doc := toYAMLTopology(snap)

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}

func toYAMLTopology(snap *domain.Snapshot) yamlTopology {
	doc := yamlTopology{
		Networks: make([]yamlNetwork, 0, len(snap.Networks)),
		Machines: make([]yamlMachine, 0, len(snap.Machines)),
		Observed: yamlObserved{
			IPs:        len(snap.IPs),
			MACs:       len(snap.MACs),
			Packets:    len(snap.Packets),
			VLANs:      snap.VLANCounts(),
			Hosts:      snap.Hosts,
			UserAgents: snap.UserAgents,
			Servers:    snap.Servers,
		},
	}

	if env := snap.Environment; env != nil {
		doc.Environment = &yamlEnvironment{ID: env.RemoteID, Name: env.Name, RunID: env.RunID}
	}

	networkRemote := make(map[int64]string, len(snap.NetworkBindings))
	for _, b := range snap.NetworkBindings {
		networkRemote[b.NetworkID] = b.RemoteID
	}
	for _, n := range snap.Networks {
		doc.Networks = append(doc.Networks, yamlNetwork{
			Network:  n.Network,
			Mask:     n.Mask,
			VLAN:     n.VLAN,
			RemoteID: networkRemote[n.ID],
		})
	}

	machineIPs := make(map[int64][]string)
	for _, ip := range snap.IPs {
		if ip.MachineID != nil {
			machineIPs[*ip.MachineID] = append(machineIPs[*ip.MachineID], fmt.Sprintf("%s@%d", ip.Address, ip.VLAN))
		}
	}
	machineRemote := make(map[int64]string, len(snap.MachineBindings))
	for _, b := range snap.MachineBindings {
		machineRemote[b.MachineID] = b.RemoteID
	}
	for _, m := range snap.Machines {
		doc.Machines = append(doc.Machines, yamlMachine{
			Key:               m.Key,
			Role:              string(m.Role()),
			MachineConfidence: m.MachineConfidence,
			RouterConfidence:  m.RouterConfidence,
			IPs:               machineIPs[m.ID],
			RemoteID:          machineRemote[m.ID],
		})
	}

	return doc
}
