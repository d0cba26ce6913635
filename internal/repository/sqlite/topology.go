package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"netcompiler/internal/domain"
)

// UpsertNetwork finds or creates the (network, vlan) aggregate and links the
// addr row on vlan to it. Returns the aggregate id.
func (r *Repository) UpsertNetwork(ctx context.Context, network, mask, addr string, vlan int) (int64, error) {
	if _, err := r.db.ExecContext(ctx,
		"INSERT INTO networks (network, mask, vlan) VALUES (?, ?, ?) ON CONFLICT DO NOTHING",
		network, mask, vlan); err != nil {
		return 0, fmt.Errorf("failed to insert network: %w", err)
	}

	var id int64
	if err := r.db.QueryRowContext(ctx,
		"SELECT id FROM networks WHERE network = ? AND vlan = ?", network, vlan).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to query network: %w", err)
	}

	if _, err := r.db.ExecContext(ctx,
		"UPDATE ips SET network_id = ? WHERE address = ? AND vlan = ?", id, addr, vlan); err != nil {
		return 0, fmt.Errorf("failed to link ip to network: %w", err)
	}

	return id, nil
}

// InsertMachine creates a machine and returns its id
func (r *Repository) InsertMachine(ctx context.Context, key string, machineConf, routerConf float64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO machines (key, machine_confidence, router_confidence) VALUES (?, ?, ?)",
		key, machineConf, routerConf)
	if err != nil {
		return 0, fmt.Errorf("failed to insert machine: %w", err)
	}
	return res.LastInsertId()
}

// AssignIPs makes machineID the owner of every row of each address
func (r *Repository) AssignIPs(ctx context.Context, machineID int64, addrs []string) error {
	for _, addr := range addrs {
		if _, err := r.db.ExecContext(ctx,
			"UPDATE ips SET machine_id = ? WHERE address = ?", machineID, addr); err != nil {
			return fmt.Errorf("failed to assign ip %s: %w", addr, err)
		}
	}
	return nil
}

// InsertSyntheticIP records an address that was never observed, owned by
// machineID. An existing (addr, vlan) row is re-owned rather than duplicated,
// regardless of which machine owned it before.
func (r *Repository) InsertSyntheticIP(ctx context.Context, addr string, vlan int, networkID, machineID int64) (int64, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ips (address, vlan, network_id, machine_id) VALUES (?, ?, ?, ?)
		ON CONFLICT (address, vlan) DO UPDATE SET
			network_id = excluded.network_id,
			machine_id = excluded.machine_id
	`, addr, vlan, networkID, machineID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert synthetic ip: %w", err)
	}

	var id int64
	if err := r.db.QueryRowContext(ctx,
		"SELECT id FROM ips WHERE address = ? AND vlan = ?", addr, vlan).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to query synthetic ip: %w", err)
	}
	return id, nil
}

// ListNetworks returns all network aggregates in creation order
func (r *Repository) ListNetworks(ctx context.Context) ([]domain.NetworkAggregate, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, network, mask, vlan FROM networks ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query networks: %w", err)
	}
	defer rows.Close()

	var networks []domain.NetworkAggregate
	for rows.Next() {
		var n domain.NetworkAggregate
		if err := rows.Scan(&n.ID, &n.Network, &n.Mask, &n.VLAN); err != nil {
			return nil, fmt.Errorf("failed to scan network: %w", err)
		}
		networks = append(networks, n)
	}
	return networks, rows.Err()
}

// ListMachines returns every machine that owns at least one IP, with its IPs
func (r *Repository) ListMachines(ctx context.Context) ([]domain.MachineIPs, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT m.id, m.key, m.machine_confidence, m.router_confidence,
			i.id, i.address, i.vlan, i.network_id
		FROM machines m
		JOIN ips i ON i.machine_id = m.id
		ORDER BY m.id, i.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query machines: %w", err)
	}
	defer rows.Close()

	var machines []domain.MachineIPs
	for rows.Next() {
		var (
			m         domain.Machine
			ip        domain.IPRecord
			networkID sql.NullInt64
		)
		if err := rows.Scan(&m.ID, &m.Key, &m.MachineConfidence, &m.RouterConfidence,
			&ip.ID, &ip.Address, &ip.VLAN, &networkID); err != nil {
			return nil, fmt.Errorf("failed to scan machine: %w", err)
		}
		ip.NetworkID = nullToInt64Ptr(networkID)
		owner := m.ID
		ip.MachineID = &owner

		if n := len(machines); n == 0 || machines[n-1].Machine.ID != m.ID {
			machines = append(machines, domain.MachineIPs{Machine: m})
		}
		last := &machines[len(machines)-1]
		last.IPs = append(last.IPs, ip)
	}
	return machines, rows.Err()
}

// ListRouterBindings returns the remote identity of every router machine
func (r *Repository) ListRouterBindings(ctx context.Context) ([]domain.RouterBinding, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT m.id, b.remote_id, b.name
		FROM machines m
		JOIN machine_bindings b ON b.machine_id = m.id
		WHERE m.router_confidence > m.machine_confidence
		ORDER BY m.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query routers: %w", err)
	}
	defer rows.Close()

	var routers []domain.RouterBinding
	for rows.Next() {
		var rb domain.RouterBinding
		if err := rows.Scan(&rb.MachineID, &rb.RemoteID, &rb.Name); err != nil {
			return nil, fmt.Errorf("failed to scan router: %w", err)
		}
		routers = append(routers, rb)
	}
	return routers, rows.Err()
}
