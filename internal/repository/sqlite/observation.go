package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"netcompiler/internal/domain"
)

// InsertIP records addr on vlan. Returns false if the pair already exists.
func (r *Repository) InsertIP(ctx context.Context, addr string, vlan int) (bool, error) {
	if addr == "" {
		return false, nil
	}
	inserted, err := r.execInserted(ctx,
		"INSERT INTO ips (address, vlan) VALUES (?, ?) ON CONFLICT DO NOTHING", addr, vlan)
	if err != nil {
		return false, fmt.Errorf("failed to insert ip: %w", err)
	}
	return inserted, nil
}

// InsertMAC records a hardware address
func (r *Repository) InsertMAC(ctx context.Context, addr string) (bool, error) {
	return r.insertUnique(ctx, "macs", "address", addr)
}

// InsertHost records an HTTP host name
func (r *Repository) InsertHost(ctx context.Context, host string) (bool, error) {
	return r.insertUnique(ctx, "hosts", "name", host)
}

// InsertUserAgent records an HTTP user agent
func (r *Repository) InsertUserAgent(ctx context.Context, agent string) (bool, error) {
	return r.insertUnique(ctx, "user_agents", "agent", agent)
}

// InsertServer records an HTTP server banner
func (r *Repository) InsertServer(ctx context.Context, server string) (bool, error) {
	return r.insertUnique(ctx, "servers", "name", server)
}

// InsertIPPacket stores a packet row referencing previously inserted values
func (r *Repository) InsertIPPacket(ctx context.Context, pkt *domain.IPPacket) error {
	vlan := pkt.EffectiveVLAN()

	refs, err := r.packetRefs(ctx, &pkt.SourceIP, &pkt.DestIP, &pkt.SourceMAC, &pkt.DestMAC, vlan)
	if err != nil {
		return err
	}

	hostID, err := r.optionalID(ctx, "hosts", "name", pkt.Host)
	if err != nil {
		return fmt.Errorf("failed to resolve host: %w", err)
	}
	agentID, err := r.optionalID(ctx, "user_agents", "agent", pkt.UserAgent)
	if err != nil {
		return fmt.Errorf("failed to resolve user agent: %w", err)
	}
	serverID, err := r.optionalID(ctx, "servers", "name", pkt.Server)
	if err != nil {
		return fmt.Errorf("failed to resolve server: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO packets (type_id, source_ip_id, dest_ip_id, source_mac_id, dest_mac_id,
			host_id, user_agent_id, server_id)
		VALUES ((SELECT id FROM packet_types WHERE name = ?), ?, ?, ?, ?, ?, ?, ?)
	`, string(domain.PacketTypeIP), refs[0], refs[1], refs[2], refs[3], hostID, agentID, serverID)
	if err != nil {
		return fmt.Errorf("failed to insert ip packet: %w", err)
	}
	return nil
}

// InsertDHCPPacket stores a DHCP packet row and its request/response flag.
// The client is recorded as the source side, the server as the destination.
func (r *Repository) InsertDHCPPacket(ctx context.Context, pkt *domain.DHCPPacket) error {
	refs, err := r.packetRefs(ctx, pkt.ClientIP, pkt.ServerIP, pkt.ClientMAC, pkt.ServerMAC, domain.DefaultVLAN)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO packets (type_id, source_ip_id, dest_ip_id, source_mac_id, dest_mac_id)
		VALUES ((SELECT id FROM packet_types WHERE name = ?), ?, ?, ?, ?)
	`, string(domain.PacketTypeDHCP), refs[0], refs[1], refs[2], refs[3])
	if err != nil {
		return fmt.Errorf("failed to insert dhcp packet: %w", err)
	}

	packetID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read packet id: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO dhcp_services (packet_id, request) VALUES (?, ?)", packetID, pkt.Request); err != nil {
		return fmt.Errorf("failed to insert dhcp service flag: %w", err)
	}

	return tx.Commit()
}

// packetRefs resolves the ip and mac ids a packet row points at, in the
// order source ip, dest ip, source mac, dest mac
func (r *Repository) packetRefs(ctx context.Context, srcIP, dstIP, srcMAC, dstMAC *string, vlan int) ([4]sql.NullInt64, error) {
	var refs [4]sql.NullInt64
	var err error

	for i, ip := range []*string{srcIP, dstIP} {
		if ip == nil || *ip == "" {
			continue
		}
		refs[i], err = r.lookupID(ctx, "SELECT id FROM ips WHERE address = ? AND vlan = ?", *ip, vlan)
		if err != nil {
			return refs, fmt.Errorf("failed to resolve ip %s: %w", *ip, err)
		}
	}

	for i, mac := range []*string{srcMAC, dstMAC} {
		refs[2+i], err = r.optionalID(ctx, "macs", "address", mac)
		if err != nil {
			return refs, fmt.Errorf("failed to resolve mac: %w", err)
		}
	}

	return refs, nil
}

// ListObservedIPs returns every distinct (address, vlan) pair in insertion order
func (r *Repository) ListObservedIPs(ctx context.Context) ([]domain.IPRecord, error) {
	return r.queryIPs(ctx, "SELECT id, address, vlan, network_id, machine_id FROM ips ORDER BY id")
}

// ListMACs returns every observed MAC in insertion order
func (r *Repository) ListMACs(ctx context.Context) ([]domain.MACRecord, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, address FROM macs ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query macs: %w", err)
	}
	defer rows.Close()

	var macs []domain.MACRecord
	for rows.Next() {
		var m domain.MACRecord
		if err := rows.Scan(&m.ID, &m.Address); err != nil {
			return nil, fmt.Errorf("failed to scan mac: %w", err)
		}
		macs = append(macs, m)
	}
	return macs, rows.Err()
}

// IPsForMAC returns the distinct addresses seen with mac: source addresses of
// packets it sent and destination addresses of packets it received, in the
// order they were first seen
func (r *Repository) IPsForMAC(ctx context.Context, mac string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT address, MIN(seen) AS first_seen FROM (
			SELECT i.address AS address, p.id * 2 AS seen
			FROM packets p
			JOIN macs m ON p.source_mac_id = m.id
			JOIN ips i ON p.source_ip_id = i.id
			WHERE m.address = ?
			UNION ALL
			SELECT i.address, p.id * 2 + 1
			FROM packets p
			JOIN macs m ON p.dest_mac_id = m.id
			JOIN ips i ON p.dest_ip_id = i.id
			WHERE m.address = ?
		)
		GROUP BY address
		ORDER BY first_seen
	`, mac, mac)
	if err != nil {
		return nil, fmt.Errorf("failed to query ips for mac: %w", err)
	}
	defer rows.Close()

	var addrs []string
	for rows.Next() {
		var addr string
		var seen int64
		if err := rows.Scan(&addr, &seen); err != nil {
			return nil, fmt.Errorf("failed to scan ip: %w", err)
		}
		addrs = append(addrs, addr)
	}
	return addrs, rows.Err()
}

// VLANOf returns the vlan of the earliest recorded row for addr, or the
// default vlan when addr is unknown
func (r *Repository) VLANOf(ctx context.Context, addr string) (int, error) {
	var vlan int
	err := r.db.QueryRowContext(ctx,
		"SELECT vlan FROM ips WHERE address = ? ORDER BY id LIMIT 1", addr).Scan(&vlan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DefaultVLAN, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query vlan: %w", err)
	}
	return vlan, nil
}

func (r *Repository) queryIPs(ctx context.Context, query string, args ...any) ([]domain.IPRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ips: %w", err)
	}
	defer rows.Close()

	var ips []domain.IPRecord
	for rows.Next() {
		var (
			ip                   domain.IPRecord
			networkID, machineID sql.NullInt64
		)
		if err := rows.Scan(&ip.ID, &ip.Address, &ip.VLAN, &networkID, &machineID); err != nil {
			return nil, fmt.Errorf("failed to scan ip: %w", err)
		}
		ip.NetworkID = nullToInt64Ptr(networkID)
		ip.MachineID = nullToInt64Ptr(machineID)
		ips = append(ips, ip)
	}
	return ips, rows.Err()
}
