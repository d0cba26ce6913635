// Package adapter turns packet captures into observations.
//
// A PcapAdapter reads classic pcap and pcapng files, decodes each frame and
// hands the result to a Sink, usually the ingest service. Only three frame
// shapes produce observations:
//
//   - DHCPv4 requests, informs and acks
//   - 802.1Q tagged IPv4
//   - untagged IPv4 over Ethernet
//
// Everything else is counted as ignored. HTTP request and response headers
// carried in a single TCP segment contribute host, user agent and server
// values.
package adapter
