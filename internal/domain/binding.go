package domain

import "time"

// EnvironmentBinding records the remote environment created for a run
type EnvironmentBinding struct {
	ID          int64     `json:"id" yaml:"id"`
	RemoteID    string    `json:"remote_id" yaml:"remote_id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description"`
	RunID       string    `json:"run_id" yaml:"run_id"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}

// NetworkBinding maps a network aggregate to its remote network
type NetworkBinding struct {
	ID        int64  `json:"id" yaml:"id"`
	NetworkID int64  `json:"network_id" yaml:"network_id"`
	RemoteID  string `json:"remote_id" yaml:"remote_id"`
	Name      string `json:"name" yaml:"name"`
}

// MachineBinding maps a machine to its remote machine
type MachineBinding struct {
	ID        int64  `json:"id" yaml:"id"`
	MachineID int64  `json:"machine_id" yaml:"machine_id"`
	RemoteID  string `json:"remote_id" yaml:"remote_id"`
	Name      string `json:"name" yaml:"name"`
}

// InterfaceBinding maps an owned IP to the remote interface created for it
type InterfaceBinding struct {
	ID               int64  `json:"id" yaml:"id"`
	MachineBindingID int64  `json:"machine_binding_id" yaml:"machine_binding_id"`
	IPID             int64  `json:"ip_id" yaml:"ip_id"`
	RemoteID         string `json:"remote_id" yaml:"remote_id"`
}

// Connection is everything needed to attach one interface to its network
type Connection struct {
	Address           string `json:"address"`
	VLAN              int    `json:"vlan"`
	MachineRemoteID   string `json:"machine_remote_id"`
	InterfaceRemoteID string `json:"interface_remote_id"`
	NetworkRemoteID   string `json:"network_remote_id"`
}

// RouterBinding is a router machine together with its remote identity
type RouterBinding struct {
	MachineID int64  `json:"machine_id"`
	RemoteID  string `json:"remote_id"`
	Name      string `json:"name"`
}
