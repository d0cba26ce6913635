package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"netcompiler/internal/domain"
)

// SaveEnvironment records the remote environment created for a run
func (r *Repository) SaveEnvironment(ctx context.Context, env *domain.EnvironmentBinding) error {
	if env.CreatedAt.IsZero() {
		env.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO environments (remote_id, name, description, run_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, env.RemoteID, env.Name, env.Description, env.RunID, env.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert environment: %w", err)
	}
	env.ID, err = res.LastInsertId()
	return err
}

// SaveNetworkBinding records the remote network created for an aggregate
func (r *Repository) SaveNetworkBinding(ctx context.Context, b *domain.NetworkBinding) error {
	id, err := r.upsertBinding(ctx, `
		INSERT INTO network_bindings (network_id, remote_id, name) VALUES (?, ?, ?)
		ON CONFLICT (network_id) DO UPDATE SET remote_id = excluded.remote_id, name = excluded.name
	`, "SELECT id FROM network_bindings WHERE network_id = ?", b.NetworkID, b.RemoteID, b.Name)
	if err != nil {
		return fmt.Errorf("failed to save network binding: %w", err)
	}
	b.ID = id
	return nil
}

// SaveMachineBinding records the remote machine created for a machine
func (r *Repository) SaveMachineBinding(ctx context.Context, b *domain.MachineBinding) error {
	id, err := r.upsertBinding(ctx, `
		INSERT INTO machine_bindings (machine_id, remote_id, name) VALUES (?, ?, ?)
		ON CONFLICT (machine_id) DO UPDATE SET remote_id = excluded.remote_id, name = excluded.name
	`, "SELECT id FROM machine_bindings WHERE machine_id = ?", b.MachineID, b.RemoteID, b.Name)
	if err != nil {
		return fmt.Errorf("failed to save machine binding: %w", err)
	}
	b.ID = id
	return nil
}

// SaveInterfaceBinding records the remote interface created for an IP
func (r *Repository) SaveInterfaceBinding(ctx context.Context, b *domain.InterfaceBinding) error {
	id, err := r.upsertBinding(ctx, `
		INSERT INTO interface_bindings (ip_id, machine_binding_id, remote_id) VALUES (?, ?, ?)
		ON CONFLICT (ip_id) DO UPDATE SET
			machine_binding_id = excluded.machine_binding_id,
			remote_id = excluded.remote_id
	`, "SELECT id FROM interface_bindings WHERE ip_id = ?", b.IPID, b.MachineBindingID, b.RemoteID)
	if err != nil {
		return fmt.Errorf("failed to save interface binding: %w", err)
	}
	b.ID = id
	return nil
}

// upsertBinding runs upsert with (key, a, b) and returns the id of the row
// selected by key
func (r *Repository) upsertBinding(ctx context.Context, upsert, selectID string, key int64, a, b any) (int64, error) {
	if _, err := r.db.ExecContext(ctx, upsert, key, a, b); err != nil {
		return 0, err
	}
	var id int64
	if err := r.db.QueryRowContext(ctx, selectID, key).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// ResolveConnection joins the (addr, vlan) row with its interface, machine
// and network bindings. Returns nil if any link is missing.
func (r *Repository) ResolveConnection(ctx context.Context, addr string, vlan int) (*domain.Connection, error) {
	conn := &domain.Connection{Address: addr, VLAN: vlan}
	err := r.db.QueryRowContext(ctx, `
		SELECT mb.remote_id, ib.remote_id, nb.remote_id
		FROM ips i
		JOIN interface_bindings ib ON ib.ip_id = i.id
		JOIN machine_bindings mb ON mb.id = ib.machine_binding_id
		JOIN network_bindings nb ON nb.network_id = i.network_id
		WHERE i.address = ? AND i.vlan = ?
	`, addr, vlan).Scan(&conn.MachineRemoteID, &conn.InterfaceRemoteID, &conn.NetworkRemoteID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve connection: %w", err)
	}
	return conn, nil
}
