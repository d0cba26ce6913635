package adapter

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netcompiler/internal/domain"
)

// ============================================================================
// Frame builders
// ============================================================================

var (
	clientMAC = net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}
	routerMAC = net.HardwareAddr{0x00, 0xaa, 0xbb, 0xcc, 0xdd, 0xee}
)

func serialize(t *testing.T, ls ...gopacket.SerializableLayer) []byte {
	t.Helper()
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	require.NoError(t, gopacket.SerializeLayers(buf, opts, ls...))
	return buf.Bytes()
}

func ethernet(src, dst net.HardwareAddr, typ layers.EthernetType) *layers.Ethernet {
	return &layers.Ethernet{SrcMAC: src, DstMAC: dst, EthernetType: typ}
}

func ipv4(src, dst string, proto layers.IPProtocol) *layers.IPv4 {
	return &layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: proto,
		SrcIP:    net.ParseIP(src).To4(),
		DstIP:    net.ParseIP(dst).To4(),
	}
}

func tcpFrame(t *testing.T, src, dst string, sport, dport int, payload string) []byte {
	t.Helper()
	ip := ipv4(src, dst, layers.IPProtocolTCP)
	tcp := &layers.TCP{SrcPort: layers.TCPPort(sport), DstPort: layers.TCPPort(dport), PSH: true, ACK: true, Window: 1024}
	require.NoError(t, tcp.SetNetworkLayerForChecksum(ip))
	return serialize(t, ethernet(clientMAC, routerMAC, layers.EthernetTypeIPv4), ip, tcp, gopacket.Payload(payload))
}

func udpFrame(t *testing.T, src, dst string, sport, dport int) []byte {
	t.Helper()
	ip := ipv4(src, dst, layers.IPProtocolUDP)
	udp := &layers.UDP{SrcPort: layers.UDPPort(sport), DstPort: layers.UDPPort(dport)}
	require.NoError(t, udp.SetNetworkLayerForChecksum(ip))
	return serialize(t, ethernet(clientMAC, routerMAC, layers.EthernetTypeIPv4), ip, udp, gopacket.Payload("x"))
}

func taggedFrame(t *testing.T, vlan uint16, inner layers.EthernetType) []byte {
	t.Helper()
	eth := ethernet(clientMAC, routerMAC, layers.EthernetTypeDot1Q)
	tag := &layers.Dot1Q{VLANIdentifier: vlan, Type: inner}
	if inner != layers.EthernetTypeIPv4 {
		arp := &layers.ARP{
			AddrType:          layers.LinkTypeEthernet,
			Protocol:          layers.EthernetTypeIPv4,
			HwAddressSize:     6,
			ProtAddressSize:   4,
			Operation:         layers.ARPRequest,
			SourceHwAddress:   clientMAC,
			SourceProtAddress: net.ParseIP("10.20.0.5").To4(),
			DstHwAddress:      make([]byte, 6),
			DstProtAddress:    net.ParseIP("10.20.0.1").To4(),
		}
		return serialize(t, eth, tag, arp)
	}
	ip := ipv4("10.20.0.5", "10.20.0.1", layers.IPProtocolUDP)
	udp := &layers.UDP{SrcPort: 5000, DstPort: 53}
	require.NoError(t, udp.SetNetworkLayerForChecksum(ip))
	return serialize(t, eth, tag, ip, udp, gopacket.Payload("q"))
}

func dhcpFrame(t *testing.T, msgType layers.DHCPMsgType) []byte {
	t.Helper()
	dhcp := &layers.DHCPv4{
		HardwareType: layers.LinkTypeEthernet,
		HardwareLen:  6,
		Xid:          0x1234,
		ClientHWAddr: clientMAC,
		Options: layers.DHCPOptions{
			layers.NewDHCPOption(layers.DHCPOptMessageType, []byte{byte(msgType)}),
		},
	}

	var eth *layers.Ethernet
	var ip *layers.IPv4
	var udp *layers.UDP
	if msgType == layers.DHCPMsgTypeAck || msgType == layers.DHCPMsgTypeOffer {
		dhcp.Operation = layers.DHCPOpReply
		dhcp.YourClientIP = net.ParseIP("192.168.1.50").To4()
		dhcp.Options = append(dhcp.Options,
			layers.NewDHCPOption(layers.DHCPOptServerID, net.ParseIP("192.168.1.1").To4()))
		eth = ethernet(routerMAC, clientMAC, layers.EthernetTypeIPv4)
		ip = ipv4("192.168.1.1", "192.168.1.50", layers.IPProtocolUDP)
		udp = &layers.UDP{SrcPort: 67, DstPort: 68}
	} else {
		dhcp.Operation = layers.DHCPOpRequest
		eth = ethernet(clientMAC, layers.EthernetBroadcast, layers.EthernetTypeIPv4)
		ip = ipv4("0.0.0.0", "255.255.255.255", layers.IPProtocolUDP)
		udp = &layers.UDP{SrcPort: 68, DstPort: 67}
	}
	require.NoError(t, udp.SetNetworkLayerForChecksum(ip))
	return serialize(t, eth, ip, udp, dhcp)
}

func decodeFrame(data []byte) gopacket.Packet {
	return gopacket.NewPacket(data, layers.LinkTypeEthernet, gopacket.Default)
}

func writePcap(t *testing.T, path string, frames ...[]byte) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := pcapgo.NewWriter(f)
	require.NoError(t, w.WriteFileHeader(65536, layers.LinkTypeEthernet))
	for i, data := range frames {
		ci := gopacket.CaptureInfo{
			Timestamp:     time.Unix(1700000000, int64(i)),
			CaptureLength: len(data),
			Length:        len(data),
		}
		require.NoError(t, w.WritePacket(ci, data))
	}
}

func writePcapng(t *testing.T, path string, frames ...[]byte) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w, err := pcapgo.NewNgWriter(f, layers.LinkTypeEthernet)
	require.NoError(t, err)
	for i, data := range frames {
		ci := gopacket.CaptureInfo{
			Timestamp:     time.Unix(1700000000, int64(i)),
			CaptureLength: len(data),
			Length:        len(data),
		}
		require.NoError(t, w.WritePacket(ci, data))
	}
	require.NoError(t, w.Flush())
}

// recordingSink keeps every packet it receives. A packet is stored the
// first time its source address is seen.
type recordingSink struct {
	ips   []*domain.IPPacket
	dhcps []*domain.DHCPPacket
	seen  map[string]bool
	err   error
}

func newRecordingSink() *recordingSink {
	return &recordingSink{seen: make(map[string]bool)}
}

func (s *recordingSink) IngestIP(_ context.Context, pkt *domain.IPPacket) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	s.ips = append(s.ips, pkt)
	key := pkt.SourceIP
	if s.seen[key] {
		return false, nil
	}
	s.seen[key] = true
	return true, nil
}

func (s *recordingSink) IngestDHCP(_ context.Context, pkt *domain.DHCPPacket) (bool, error) {
	s.dhcps = append(s.dhcps, pkt)
	return true, nil
}

// ============================================================================
// Decode
// ============================================================================

func TestDecodeTCP(t *testing.T) {
	d := Decode(decodeFrame(tcpFrame(t, "10.0.0.5", "10.0.0.1", 40000, 80, "")), true)
	require.NotNil(t, d.IP)
	assert.Nil(t, d.DHCP)

	assert.Equal(t, "10.0.0.5", d.IP.SourceIP)
	assert.Equal(t, "10.0.0.1", d.IP.DestIP)
	assert.Equal(t, "00:11:22:33:44:55", d.IP.SourceMAC)
	assert.Equal(t, "00:aa:bb:cc:dd:ee", d.IP.DestMAC)
	require.NotNil(t, d.IP.SourcePort)
	assert.Equal(t, 40000, *d.IP.SourcePort)
	assert.Equal(t, 80, *d.IP.DestPort)
	assert.Nil(t, d.IP.VLAN)
	assert.Equal(t, domain.DefaultVLAN, d.IP.EffectiveVLAN())
	assert.Nil(t, d.IP.Host)
}

func TestDecodeUDP(t *testing.T) {
	d := Decode(decodeFrame(udpFrame(t, "172.16.0.9", "172.16.0.1", 5353, 53)), true)
	require.NotNil(t, d.IP)
	assert.Equal(t, 5353, *d.IP.SourcePort)
	assert.Equal(t, 53, *d.IP.DestPort)
}

func TestDecodeHTTP(t *testing.T) {
	request := "GET /index.html HTTP/1.1\r\nHost: example.com\r\nUser-Agent: curl/8.0\r\n\r\n"
	d := Decode(decodeFrame(tcpFrame(t, "10.0.0.5", "10.0.0.1", 40000, 80, request)), true)
	require.NotNil(t, d.IP)
	require.NotNil(t, d.IP.Host)
	assert.Equal(t, "example.com", *d.IP.Host)
	require.NotNil(t, d.IP.UserAgent)
	assert.Equal(t, "curl/8.0", *d.IP.UserAgent)
	assert.Nil(t, d.IP.Server)

	response := "HTTP/1.1 200 OK\r\nServer: nginx\r\nContent-Length: 0\r\n\r\n"
	d = Decode(decodeFrame(tcpFrame(t, "10.0.0.1", "10.0.0.5", 80, 40000, response)), true)
	require.NotNil(t, d.IP.Server)
	assert.Equal(t, "nginx", *d.IP.Server)
	assert.Nil(t, d.IP.Host)

	d = Decode(decodeFrame(tcpFrame(t, "10.0.0.5", "10.0.0.1", 40000, 80, request)), false)
	assert.Nil(t, d.IP.Host)
}

func TestDecodeVLAN(t *testing.T) {
	d := Decode(decodeFrame(taggedFrame(t, 20, layers.EthernetTypeIPv4)), true)
	require.NotNil(t, d.IP)
	require.NotNil(t, d.IP.VLAN)
	assert.Equal(t, 20, *d.IP.VLAN)
	assert.Equal(t, "10.20.0.5", d.IP.SourceIP)

	d = Decode(decodeFrame(taggedFrame(t, 20, layers.EthernetTypeARP)), true)
	assert.True(t, d.Empty())
}

func TestDecodeDHCP(t *testing.T) {
	tests := []struct {
		name    string
		msgType layers.DHCPMsgType
		want    *domain.DHCPPacket
	}{
		{
			name:    "request",
			msgType: layers.DHCPMsgTypeRequest,
			want: &domain.DHCPPacket{
				ClientIP:  strPtr("0.0.0.0"),
				ClientMAC: strPtr("00:11:22:33:44:55"),
				Request:   true,
			},
		},
		{
			name:    "inform",
			msgType: layers.DHCPMsgTypeInform,
			want: &domain.DHCPPacket{
				ClientIP:  strPtr("0.0.0.0"),
				ClientMAC: strPtr("00:11:22:33:44:55"),
				Request:   true,
			},
		},
		{
			name:    "ack",
			msgType: layers.DHCPMsgTypeAck,
			want: &domain.DHCPPacket{
				ClientIP:  strPtr("192.168.1.50"),
				ClientMAC: strPtr("00:11:22:33:44:55"),
				ServerIP:  strPtr("192.168.1.1"),
				ServerMAC: strPtr("00:aa:bb:cc:dd:ee"),
			},
		},
		{
			name:    "offer ignored",
			msgType: layers.DHCPMsgTypeOffer,
		},
		{
			name:    "discover ignored",
			msgType: layers.DHCPMsgTypeDiscover,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decode(decodeFrame(dhcpFrame(t, tt.msgType)), true)
			assert.Nil(t, d.IP, "DHCP frames never produce IP observations")
			assert.Equal(t, tt.want, d.DHCP)
		})
	}
}

func TestDecodeNonEthernet(t *testing.T) {
	ip := ipv4("10.0.0.1", "10.0.0.2", layers.IPProtocolUDP)
	udp := &layers.UDP{SrcPort: 1, DstPort: 2}
	require.NoError(t, udp.SetNetworkLayerForChecksum(ip))
	data := serialize(t, ip, udp)

	d := Decode(gopacket.NewPacket(data, layers.LayerTypeIPv4, gopacket.Default), true)
	assert.True(t, d.Empty())
}

// ============================================================================
// Reading captures
// ============================================================================

func TestExpandPaths(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0o755))
	for _, name := range []string{"b.pcap", "a.pcap", filepath.Join("nested", "c.pcap")} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	single := filepath.Join(dir, "a.pcap")

	files := ExpandPaths([]string{dir, single, filepath.Join(dir, "missing.pcap")}, zerolog.Nop())
	assert.Equal(t, []string{
		filepath.Join(dir, "a.pcap"),
		filepath.Join(dir, "b.pcap"),
		single,
	}, files)
}

func TestPcapAdapterSync(t *testing.T) {
	dir := t.TempDir()
	writePcap(t, filepath.Join(dir, "one.pcap"),
		tcpFrame(t, "10.0.0.5", "10.0.0.1", 40000, 80, ""),
		tcpFrame(t, "10.0.0.5", "10.0.0.1", 40001, 80, ""),
		taggedFrame(t, 30, layers.EthernetTypeIPv4),
		taggedFrame(t, 30, layers.EthernetTypeARP),
	)
	writePcapng(t, filepath.Join(dir, "two.pcapng"),
		dhcpFrame(t, layers.DHCPMsgTypeRequest),
		dhcpFrame(t, layers.DHCPMsgTypeAck),
		udpFrame(t, "172.16.0.9", "172.16.0.1", 5353, 53),
	)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a capture"), 0o644))

	sink := newRecordingSink()
	a := NewPcapAdapter([]string{dir})
	assert.Equal(t, "pcap", a.Name())

	result, err := a.Sync(context.Background(), sink)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Files)
	assert.Equal(t, 7, result.Packets)
	assert.Equal(t, 4, result.IP)
	assert.Equal(t, 2, result.DHCP)
	assert.Equal(t, 5, result.Stored)
	assert.Equal(t, 1, result.Redundant)
	assert.Equal(t, 1, result.Ignored)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "notes.txt")

	require.Len(t, sink.ips, 4)
	require.NotNil(t, sink.ips[2].VLAN)
	assert.Equal(t, 30, *sink.ips[2].VLAN)
	require.Len(t, sink.dhcps, 2)
	assert.True(t, sink.dhcps[0].Request)
	assert.False(t, sink.dhcps[1].Request)
}

func TestPcapAdapterSinkError(t *testing.T) {
	dir := t.TempDir()
	writePcap(t, filepath.Join(dir, "one.pcap"), tcpFrame(t, "10.0.0.5", "10.0.0.1", 1, 2, ""))

	sink := newRecordingSink()
	sink.err = assert.AnError
	_, err := NewPcapAdapter([]string{dir}).Sync(context.Background(), sink)
	require.ErrorIs(t, err, assert.AnError)
}

func TestPcapAdapterCanceled(t *testing.T) {
	dir := t.TempDir()
	writePcap(t, filepath.Join(dir, "one.pcap"), tcpFrame(t, "10.0.0.5", "10.0.0.1", 1, 2, ""))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewPcapAdapter([]string{dir}).Sync(ctx, newRecordingSink())
	require.ErrorIs(t, err, context.Canceled)
}

func TestOpenReaderRejectsGarbage(t *testing.T) {
	_, err := openReader(bytes.NewReader([]byte("garbage data here")))
	require.Error(t, err)

	_, err = openReader(bytes.NewReader([]byte{0x01}))
	require.Error(t, err)
}
