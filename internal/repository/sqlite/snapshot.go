package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"netcompiler/internal/domain"
)

// Snapshot dumps every relation of the store
func (r *Repository) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	var (
		snap = &domain.Snapshot{}
		err  error
	)

	if snap.IPs, err = r.ListObservedIPs(ctx); err != nil {
		return nil, err
	}
	if snap.MACs, err = r.ListMACs(ctx); err != nil {
		return nil, err
	}
	if snap.Hosts, err = r.queryStrings(ctx, "SELECT name FROM hosts ORDER BY id"); err != nil {
		return nil, err
	}
	if snap.UserAgents, err = r.queryStrings(ctx, "SELECT agent FROM user_agents ORDER BY id"); err != nil {
		return nil, err
	}
	if snap.Servers, err = r.queryStrings(ctx, "SELECT name FROM servers ORDER BY id"); err != nil {
		return nil, err
	}
	if snap.Packets, err = r.listPackets(ctx); err != nil {
		return nil, err
	}
	if snap.Networks, err = r.ListNetworks(ctx); err != nil {
		return nil, err
	}
	if snap.Machines, err = r.listAllMachines(ctx); err != nil {
		return nil, err
	}
	if snap.Environment, err = r.latestEnvironment(ctx); err != nil {
		return nil, err
	}
	if err := r.loadBindings(ctx, snap); err != nil {
		return nil, err
	}

	return snap, nil
}

func (r *Repository) queryStrings(ctx context.Context, query string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repository) listPackets(ctx context.Context) ([]domain.PacketRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, t.name, si.address, di.address, sm.address, dm.address,
			h.name, ua.agent, s.name, d.request, p.created_at
		FROM packets p
		JOIN packet_types t ON t.id = p.type_id
		LEFT JOIN ips si ON si.id = p.source_ip_id
		LEFT JOIN ips di ON di.id = p.dest_ip_id
		LEFT JOIN macs sm ON sm.id = p.source_mac_id
		LEFT JOIN macs dm ON dm.id = p.dest_mac_id
		LEFT JOIN hosts h ON h.id = p.host_id
		LEFT JOIN user_agents ua ON ua.id = p.user_agent_id
		LEFT JOIN servers s ON s.id = p.server_id
		LEFT JOIN dhcp_services d ON d.packet_id = p.id
		ORDER BY p.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query packets: %w", err)
	}
	defer rows.Close()

	var packets []domain.PacketRecord
	for rows.Next() {
		var (
			p                            domain.PacketRecord
			typeName                     string
			srcIP, dstIP, srcMAC, dstMAC sql.NullString
			host, agent, server          sql.NullString
			request                      sql.NullBool
		)
		if err := rows.Scan(&p.ID, &typeName, &srcIP, &dstIP, &srcMAC, &dstMAC,
			&host, &agent, &server, &request, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan packet: %w", err)
		}
		p.Type = domain.PacketType(typeName)
		p.SourceIP = nullToString(srcIP)
		p.DestIP = nullToString(dstIP)
		p.SourceMAC = nullToString(srcMAC)
		p.DestMAC = nullToString(dstMAC)
		p.Host = nullToString(host)
		p.UserAgent = nullToString(agent)
		p.Server = nullToString(server)
		if request.Valid {
			v := request.Bool
			p.Request = &v
		}
		packets = append(packets, p)
	}
	return packets, rows.Err()
}

func (r *Repository) listAllMachines(ctx context.Context) ([]domain.Machine, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, key, machine_confidence, router_confidence FROM machines ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query machines: %w", err)
	}
	defer rows.Close()

	var machines []domain.Machine
	for rows.Next() {
		var m domain.Machine
		if err := rows.Scan(&m.ID, &m.Key, &m.MachineConfidence, &m.RouterConfidence); err != nil {
			return nil, fmt.Errorf("failed to scan machine: %w", err)
		}
		machines = append(machines, m)
	}
	return machines, rows.Err()
}

func (r *Repository) latestEnvironment(ctx context.Context) (*domain.EnvironmentBinding, error) {
	var (
		env         domain.EnvironmentBinding
		description sql.NullString
		runID       sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, remote_id, name, description, run_id, created_at
		FROM environments ORDER BY id DESC LIMIT 1
	`).Scan(&env.ID, &env.RemoteID, &env.Name, &description, &runID, &env.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query environment: %w", err)
	}
	env.Description = nullToString(description)
	env.RunID = nullToString(runID)
	return &env, nil
}

func (r *Repository) loadBindings(ctx context.Context, snap *domain.Snapshot) error {
	rows, err := r.db.QueryContext(ctx, "SELECT id, network_id, remote_id, name FROM network_bindings ORDER BY id")
	if err != nil {
		return fmt.Errorf("failed to query network bindings: %w", err)
	}
	for rows.Next() {
		var b domain.NetworkBinding
		if err := rows.Scan(&b.ID, &b.NetworkID, &b.RemoteID, &b.Name); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan network binding: %w", err)
		}
		snap.NetworkBindings = append(snap.NetworkBindings, b)
	}
	rows.Close()

	rows, err = r.db.QueryContext(ctx, "SELECT id, machine_id, remote_id, name FROM machine_bindings ORDER BY id")
	if err != nil {
		return fmt.Errorf("failed to query machine bindings: %w", err)
	}
	for rows.Next() {
		var b domain.MachineBinding
		if err := rows.Scan(&b.ID, &b.MachineID, &b.RemoteID, &b.Name); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan machine binding: %w", err)
		}
		snap.MachineBindings = append(snap.MachineBindings, b)
	}
	rows.Close()

	rows, err = r.db.QueryContext(ctx, "SELECT id, machine_binding_id, ip_id, remote_id FROM interface_bindings ORDER BY id")
	if err != nil {
		return fmt.Errorf("failed to query interface bindings: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var b domain.InterfaceBinding
		if err := rows.Scan(&b.ID, &b.MachineBindingID, &b.IPID, &b.RemoteID); err != nil {
			return fmt.Errorf("failed to scan interface binding: %w", err)
		}
		snap.InterfaceBindings = append(snap.InterfaceBindings, b)
	}
	return rows.Err()
}
