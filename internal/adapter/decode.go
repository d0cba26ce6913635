package adapter

import (
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"netcompiler/internal/domain"
)

// Decoded is the observation carried by one frame. At most one field is set.
type Decoded struct {
	IP   *domain.IPPacket
	DHCP *domain.DHCPPacket
}

// Empty reports whether the frame carried nothing of interest
func (d Decoded) Empty() bool {
	return d.IP == nil && d.DHCP == nil
}

// Decode extracts the observation from a decoded frame. DHCP takes
// precedence over VLAN tagging, which takes precedence over plain IPv4.
func Decode(p gopacket.Packet, withHTTP bool) Decoded {
	eth, ok := p.Layer(layers.LayerTypeEthernet).(*layers.Ethernet)
	if !ok {
		return Decoded{}
	}
	ip4, _ := p.Layer(layers.LayerTypeIPv4).(*layers.IPv4)

	if dhcp, ok := p.Layer(layers.LayerTypeDHCPv4).(*layers.DHCPv4); ok {
		return Decoded{DHCP: decodeDHCP(eth, ip4, dhcp)}
	}

	var vlan *int
	if tag, ok := p.Layer(layers.LayerTypeDot1Q).(*layers.Dot1Q); ok {
		if tag.Type != layers.EthernetTypeIPv4 {
			return Decoded{}
		}
		id := int(tag.VLANIdentifier)
		vlan = &id
	}
	if ip4 == nil {
		return Decoded{}
	}

	pkt := &domain.IPPacket{
		SourceIP:  ip4.SrcIP.String(),
		DestIP:    ip4.DstIP.String(),
		SourceMAC: eth.SrcMAC.String(),
		DestMAC:   eth.DstMAC.String(),
		VLAN:      vlan,
	}

	switch t := p.TransportLayer().(type) {
	case *layers.TCP:
		pkt.SourcePort, pkt.DestPort = port(int(t.SrcPort)), port(int(t.DstPort))
		if withHTTP {
			pkt.Host, pkt.UserAgent, pkt.Server = httpMetadata(t.Payload)
		}
	case *layers.UDP:
		pkt.SourcePort, pkt.DestPort = port(int(t.SrcPort)), port(int(t.DstPort))
	}

	return Decoded{IP: pkt}
}

func decodeDHCP(eth *layers.Ethernet, ip4 *layers.IPv4, d *layers.DHCPv4) *domain.DHCPPacket {
	msgType, ok := dhcpMessageType(d)
	if !ok {
		return nil
	}

	switch msgType {
	case layers.DHCPMsgTypeRequest, layers.DHCPMsgTypeInform:
		pkt := &domain.DHCPPacket{
			ClientMAC: strPtr(eth.SrcMAC.String()),
			Request:   true,
		}
		if ip4 != nil {
			pkt.ClientIP = strPtr(ip4.SrcIP.String())
		}
		return pkt

	case layers.DHCPMsgTypeAck:
		pkt := &domain.DHCPPacket{
			ClientMAC: strPtr(eth.DstMAC.String()),
			ServerMAC: strPtr(eth.SrcMAC.String()),
		}
		if ip := d.YourClientIP; ip != nil && !ip.IsUnspecified() {
			pkt.ClientIP = strPtr(ip.String())
		}
		for _, opt := range d.Options {
			if opt.Type == layers.DHCPOptServerID && len(opt.Data) == net.IPv4len {
				pkt.ServerIP = strPtr(net.IP(opt.Data).String())
			}
		}
		return pkt
	}
	return nil
}

func dhcpMessageType(d *layers.DHCPv4) (layers.DHCPMsgType, bool) {
	for _, opt := range d.Options {
		if opt.Type == layers.DHCPOptMessageType && len(opt.Data) == 1 {
			return layers.DHCPMsgType(opt.Data[0]), true
		}
	}
	return layers.DHCPMsgTypeUnspecified, false
}

func port(p int) *int { return &p }

func strPtr(s string) *string { return &s }
