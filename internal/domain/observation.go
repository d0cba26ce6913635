package domain

import "time"

// DefaultVLAN is the VLAN recorded for untagged traffic
const DefaultVLAN = 1

// PacketType distinguishes the packet kinds the store records
type PacketType string

const (
	PacketTypeIP   PacketType = "IP"
	PacketTypeDHCP PacketType = "DHCP"
)

// IPRecord is an observed IP address on a VLAN
type IPRecord struct {
	ID        int64  `json:"id" yaml:"id"`
	Address   string `json:"address" yaml:"address"`
	VLAN      int    `json:"vlan" yaml:"vlan"`
	NetworkID *int64 `json:"network_id,omitempty" yaml:"network_id,omitempty"`
	MachineID *int64 `json:"machine_id,omitempty" yaml:"machine_id,omitempty"`
}

// MACRecord is an observed hardware address
type MACRecord struct {
	ID      int64  `json:"id" yaml:"id"`
	Address string `json:"address" yaml:"address"`
}

// IPPacket is an IPv4 packet as reported by a capture adapter.
// Optional fields are nil when the packet did not carry them.
type IPPacket struct {
	SourceIP   string  `json:"source_ip"`
	DestIP     string  `json:"dest_ip"`
	SourceMAC  string  `json:"source_mac"`
	DestMAC    string  `json:"dest_mac"`
	SourcePort *int    `json:"source_port,omitempty"`
	DestPort   *int    `json:"dest_port,omitempty"`
	VLAN       *int    `json:"vlan,omitempty"`
	Host       *string `json:"host,omitempty"`
	UserAgent  *string `json:"user_agent,omitempty"`
	Server     *string `json:"server,omitempty"`
}

// EffectiveVLAN returns the packet VLAN, or DefaultVLAN for untagged traffic
func (p *IPPacket) EffectiveVLAN() int {
	if p.VLAN == nil {
		return DefaultVLAN
	}
	return *p.VLAN
}

// DHCPPacket is a DHCP request or response. A request only carries the
// client MAC that matters for the store; a response carries all four
// addresses.
type DHCPPacket struct {
	ClientIP  *string `json:"client_ip,omitempty"`
	ClientMAC *string `json:"client_mac,omitempty"`
	ServerIP  *string `json:"server_ip,omitempty"`
	ServerMAC *string `json:"server_mac,omitempty"`
	Request   bool    `json:"request"`
}

// Complete reports whether all four address fields are present
func (p *DHCPPacket) Complete() bool {
	return p.ClientIP != nil && p.ClientMAC != nil && p.ServerIP != nil && p.ServerMAC != nil
}

// PacketRecord is a stored, non-redundant packet
type PacketRecord struct {
	ID        int64      `json:"id" yaml:"id"`
	Type      PacketType `json:"type" yaml:"type"`
	SourceIP  string     `json:"source_ip,omitempty" yaml:"source_ip,omitempty"`
	DestIP    string     `json:"dest_ip,omitempty" yaml:"dest_ip,omitempty"`
	SourceMAC string     `json:"source_mac,omitempty" yaml:"source_mac,omitempty"`
	DestMAC   string     `json:"dest_mac,omitempty" yaml:"dest_mac,omitempty"`
	Host      string     `json:"host,omitempty" yaml:"host,omitempty"`
	UserAgent string     `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	Server    string     `json:"server,omitempty" yaml:"server,omitempty"`
	Request   *bool      `json:"request,omitempty" yaml:"request,omitempty"`
	CreatedAt time.Time  `json:"created_at" yaml:"created_at"`
}

// MaxTaggedVLAN bounds the VLAN ids that get an explicit interface binding
const MaxTaggedVLAN = 4094

// IsTaggedVLAN reports whether v lies strictly between the default VLAN and
// MaxTaggedVLAN
func IsTaggedVLAN(v int) bool {
	return v > DefaultVLAN && v < MaxTaggedVLAN
}
