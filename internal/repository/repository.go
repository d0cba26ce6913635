package repository

import (
	"context"

	"netcompiler/internal/domain"
)

// Repository defines the interface for observation and topology data access
type Repository interface {
	// Observation inserts
	InsertIP(ctx context.Context, addr string, vlan int) (bool, error)
	InsertMAC(ctx context.Context, addr string) (bool, error)
	InsertHost(ctx context.Context, host string) (bool, error)
	InsertUserAgent(ctx context.Context, agent string) (bool, error)
	InsertServer(ctx context.Context, server string) (bool, error)
	InsertIPPacket(ctx context.Context, pkt *domain.IPPacket) error
	InsertDHCPPacket(ctx context.Context, pkt *domain.DHCPPacket) error

	// Inference reads
	ListObservedIPs(ctx context.Context) ([]domain.IPRecord, error)
	ListMACs(ctx context.Context) ([]domain.MACRecord, error)
	IPsForMAC(ctx context.Context, mac string) ([]string, error)

	// Inference writes
	UpsertNetwork(ctx context.Context, network, mask, addr string, vlan int) (int64, error)
	InsertMachine(ctx context.Context, key string, machineConf, routerConf float64) (int64, error)
	AssignIPs(ctx context.Context, machineID int64, addrs []string) error
	InsertSyntheticIP(ctx context.Context, addr string, vlan int, networkID, machineID int64) (int64, error)
	VLANOf(ctx context.Context, addr string) (int, error)

	// Topology reads
	ListNetworks(ctx context.Context) ([]domain.NetworkAggregate, error)
	ListMachines(ctx context.Context) ([]domain.MachineIPs, error)
	ListRouterBindings(ctx context.Context) ([]domain.RouterBinding, error)

	// Bindings
	SaveEnvironment(ctx context.Context, env *domain.EnvironmentBinding) error
	SaveNetworkBinding(ctx context.Context, b *domain.NetworkBinding) error
	SaveMachineBinding(ctx context.Context, b *domain.MachineBinding) error
	SaveInterfaceBinding(ctx context.Context, b *domain.InterfaceBinding) error
	ResolveConnection(ctx context.Context, addr string, vlan int) (*domain.Connection, error)

	// Snapshot dumps every relation
	Snapshot(ctx context.Context) (*domain.Snapshot, error)

	// Close releases resources
	Close() error
}
