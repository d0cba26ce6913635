package sqlite

import (
	"database/sql"
	"fmt"

	"netcompiler/internal/repository"

	_ "modernc.org/sqlite"
)

// MemoryDSN opens a private in-memory database
const MemoryDSN = ":memory:"

var _ repository.Repository = (*Repository)(nil)

// Repository implements repository.Repository using SQLite
type Repository struct {
	db *sql.DB
}

// New creates a new SQLite repository
func New(dbPath string) (*Repository, error) {
	if dbPath == "" {
		dbPath = MemoryDSN
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS networks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		network TEXT NOT NULL,
		mask TEXT NOT NULL,
		vlan INTEGER NOT NULL,
		UNIQUE (network, vlan)
	);

	CREATE TABLE IF NOT EXISTS machines (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		key TEXT NOT NULL,
		machine_confidence REAL NOT NULL,
		router_confidence REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS ips (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		address TEXT NOT NULL,
		vlan INTEGER NOT NULL DEFAULT 1,
		network_id INTEGER REFERENCES networks(id),
		machine_id INTEGER REFERENCES machines(id),
		UNIQUE (address, vlan)
	);

	CREATE TABLE IF NOT EXISTS macs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		address TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS hosts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS user_agents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		agent TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS servers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS packet_types (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	);

	INSERT INTO packet_types (name) VALUES ('IP'), ('DHCP') ON CONFLICT DO NOTHING;

	CREATE TABLE IF NOT EXISTS packets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type_id INTEGER NOT NULL REFERENCES packet_types(id),
		source_ip_id INTEGER REFERENCES ips(id),
		dest_ip_id INTEGER REFERENCES ips(id),
		source_mac_id INTEGER REFERENCES macs(id),
		dest_mac_id INTEGER REFERENCES macs(id),
		host_id INTEGER REFERENCES hosts(id),
		user_agent_id INTEGER REFERENCES user_agents(id),
		server_id INTEGER REFERENCES servers(id),
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS dhcp_services (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		packet_id INTEGER NOT NULL REFERENCES packets(id) ON DELETE CASCADE,
		request INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS environments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		remote_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT,
		run_id TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS network_bindings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		network_id INTEGER NOT NULL UNIQUE REFERENCES networks(id),
		remote_id TEXT NOT NULL,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS machine_bindings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		machine_id INTEGER NOT NULL UNIQUE REFERENCES machines(id),
		remote_id TEXT NOT NULL,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS interface_bindings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		machine_binding_id INTEGER NOT NULL REFERENCES machine_bindings(id),
		ip_id INTEGER NOT NULL UNIQUE REFERENCES ips(id),
		remote_id TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_ips_machine ON ips(machine_id);
	CREATE INDEX IF NOT EXISTS idx_packets_source_mac ON packets(source_mac_id);
	CREATE INDEX IF NOT EXISTS idx_packets_dest_mac ON packets(dest_mac_id);
	`

	_, err := r.db.Exec(schema)
	return err
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
