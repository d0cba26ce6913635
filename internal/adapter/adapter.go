package adapter

import (
	"context"

	"netcompiler/internal/domain"
)

// Sink receives decoded packets. The boolean reports whether the packet
// added anything new.
type Sink interface {
	IngestIP(ctx context.Context, pkt *domain.IPPacket) (bool, error)
	IngestDHCP(ctx context.Context, pkt *domain.DHCPPacket) (bool, error)
}

// Adapter is a packet source
type Adapter interface {
	// Name returns the unique identifier for this adapter
	Name() string

	// Sync reads every packet of the source into sink
	Sync(ctx context.Context, sink Sink) (*SyncResult, error)
}

// SyncResult represents the outcome of reading a source
type SyncResult struct {
	Files     int `json:"files"`
	Packets   int `json:"packets"`
	IP        int `json:"ip"`
	DHCP      int `json:"dhcp"`
	Stored    int `json:"stored"`
	Redundant int `json:"redundant"`
	Ignored   int `json:"ignored"`
	// Errors encountered while reading (non-fatal)
	Errors []string `json:"errors,omitempty"`
}
