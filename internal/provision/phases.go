package provision

import (
	"errors"
	"fmt"
	"strings"

	"netcompiler/internal/dispatch"
	"netcompiler/internal/domain"
)

var (
	// ErrUserNotFound is returned when the configured user is not listed by the API
	ErrUserNotFound = errors.New("user not found")

	// ErrEnvironmentNotCreated is returned when no environment could be created
	ErrEnvironmentNotCreated = errors.New("environment not created")
)

type environmentPhase struct{}

func (environmentPhase) Name() string { return "environment" }

func (environmentPhase) Provision(c *Context) error {
	users, ok, err := c.call("get_users", nil)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: cannot list users", ErrEnvironmentNotCreated)
	}

	userPK := ""
	for _, u := range users.List() {
		if dispatch.Field(u, "username") == c.Options.Username {
			userPK = dispatch.Field(u, "pk", "id")
			break
		}
	}
	if userPK == "" {
		return fmt.Errorf("%w: %s", ErrUserNotFound, c.Options.Username)
	}

	// a failed listing counts as no previous environments
	existing := 0
	sdis, ok, err := c.call("get_sdis", dispatch.Args{"user_pk": userPK})
	if err != nil {
		return err
	}
	if ok {
		for _, s := range sdis.List() {
			if strings.Contains(dispatch.Field(s, "name"), c.Options.EnvironmentPrefix) {
				existing++
			}
		}
	}

	name := fmt.Sprintf("%s_%d", c.Options.EnvironmentPrefix, existing)
	resp, ok, err := c.call("create_sdi", dispatch.Args{
		"user_pk":     userPK,
		"name":        name,
		"description": c.Options.Description,
	})
	if err != nil {
		return err
	}
	id := c.Calls.EnvironmentID()
	c.Metrics.ObserveProvisioned("environment", ok && id != "")
	if !ok || id == "" {
		return fmt.Errorf("%w: %s", ErrEnvironmentNotCreated, name)
	}
	if n := resp.String("name"); n != "" {
		name = n
	}

	env := &domain.EnvironmentBinding{
		RemoteID:    id,
		Name:        name,
		Description: c.Options.Description,
		RunID:       c.Options.RunID,
	}
	if err := c.Store.SaveEnvironment(c, env); err != nil {
		return err
	}
	c.State.Environment = env
	c.Log.Info().Str("environment", name).Str("remote_id", id).Msg("environment created")
	return nil
}

type networkPhase struct{}

func (networkPhase) Name() string { return "networks" }

func (networkPhase) Provision(c *Context) error {
	networks, err := c.Store.ListNetworks(c)
	if err != nil {
		return err
	}

	progress := newCountdown(c.Progress, "Adding networks...", len(networks))
	for i, n := range networks {
		progress.Tick(i)

		name := fmt.Sprintf("Network_%d", i+1)
		resp, id, err := c.create("network", "create_network", dispatch.Args{"name": name, "mode": "switch"})
		if err != nil {
			return err
		}
		if id == "" {
			continue
		}

		steps := []struct {
			op   string
			args dispatch.Args
		}{
			{"delete_service", dispatch.Args{"network_id": id, "vid": domain.DefaultVLAN}},
			{"add_service", dispatch.Args{"network_id": id, "vid": n.VLAN}},
			{"edit_service", dispatch.Args{
				"network_id": id,
				"vid":        n.VLAN,
				"dhcp":       true,
				"ip":         n.Network,
				"netmask":    n.Mask,
			}},
		}
		for _, s := range steps {
			if _, _, err := c.call(s.op, s.args); err != nil {
				return err
			}
		}

		if remote := resp.String("name"); remote != "" {
			name = remote
		}
		if err := c.Store.SaveNetworkBinding(c, &domain.NetworkBinding{NetworkID: n.ID, RemoteID: id, Name: name}); err != nil {
			return err
		}
		c.State.Networks++
		c.Log.Debug().Str("network", n.String()).Str("remote_id", id).Msg("network created")
	}
	progress.Done()
	return nil
}

type machinePhase struct{}

func (machinePhase) Name() string { return "machines" }

func (machinePhase) Provision(c *Context) error {
	machines, err := c.Store.ListMachines(c)
	if err != nil {
		return err
	}

	progress := newCountdown(c.Progress, "Adding machines...", len(machines))
	for i, m := range machines {
		progress.Tick(i)

		name := fmt.Sprintf("machine%d", i+1)
		resp, id, err := c.create("machine", "create_machine", dispatch.Args{
			"name": name,
			"role": string(domain.RoleWorkstation),
		})
		if err != nil {
			return err
		}
		if id == "" {
			continue
		}
		if remote := resp.String("name"); remote != "" {
			name = remote
		}

		binding := &domain.MachineBinding{MachineID: m.Machine.ID, RemoteID: id, Name: name}
		if err := c.Store.SaveMachineBinding(c, binding); err != nil {
			return err
		}
		c.State.Machines++

		for _, ip := range m.IPs {
			if err := addInterface(c, binding, ip); err != nil {
				return err
			}
		}
	}
	progress.Done()
	return nil
}

// addInterface creates an unplugged interface for ip on the remote machine.
// Tagged VLANs replace the interface's default VLAN.
func addInterface(c *Context, machine *domain.MachineBinding, ip domain.IPRecord) error {
	_, id, err := c.create("interface", "create_machine_interface", dispatch.Args{
		"machine_id": machine.RemoteID,
		"network":    nil,
		"nic":        c.Options.NICModel,
	})
	if err != nil || id == "" {
		return err
	}

	if domain.IsTaggedVLAN(ip.VLAN) {
		if _, _, err := c.call("delete_machine_vlan", dispatch.Args{
			"machine_id":   machine.RemoteID,
			"interface_id": id,
			"vlan_id":      domain.DefaultVLAN,
		}); err != nil {
			return err
		}
		if _, _, err := c.call("add_machine_vlan", dispatch.Args{
			"machine_id":   machine.RemoteID,
			"interface_id": id,
			"vlan":         ip.VLAN,
		}); err != nil {
			return err
		}
	}

	if err := c.Store.SaveInterfaceBinding(c, &domain.InterfaceBinding{
		MachineBindingID: machine.ID,
		IPID:             ip.ID,
		RemoteID:         id,
	}); err != nil {
		return err
	}
	c.State.Interfaces++
	return nil
}

type connectPhase struct{}

func (connectPhase) Name() string { return "connect" }

func (connectPhase) Provision(c *Context) error {
	machines, err := c.Store.ListMachines(c)
	if err != nil {
		return err
	}

	progress := newCountdown(c.Progress, "Connecting machines to networks...", len(machines))
	for i, m := range machines {
		progress.Tick(i)

		for _, ip := range m.IPs {
			conn, err := c.Store.ResolveConnection(c, ip.Address, ip.VLAN)
			if err != nil {
				return err
			}
			if conn == nil {
				c.Log.Debug().Str("ip", ip.Address).Int("vlan", ip.VLAN).Msg("no connection to make")
				continue
			}

			_, ok, err := c.call("edit_machine_interface", dispatch.Args{
				"machine_id":   conn.MachineRemoteID,
				"interface_id": conn.InterfaceRemoteID,
				"network":      conn.NetworkRemoteID,
			})
			if err != nil {
				return err
			}
			if _, _, err := c.call("edit_machine_vlan", dispatch.Args{
				"machine_id":   conn.MachineRemoteID,
				"interface_id": conn.InterfaceRemoteID,
				"vlan_id":      conn.VLAN,
				"ip":           conn.Address,
			}); err != nil {
				return err
			}

			c.Metrics.ObserveProvisioned("connection", ok)
			if ok {
				c.State.Connections++
			}
		}
	}
	progress.Done()
	return nil
}

type routerPhase struct{}

func (routerPhase) Name() string { return "routers" }

func (routerPhase) Provision(c *Context) error {
	routers, err := c.Store.ListRouterBindings(c)
	if err != nil {
		return err
	}

	for _, r := range routers {
		_, ok, err := c.call("edit_machine", dispatch.Args{
			"machine_id": r.RemoteID,
			"role":       string(domain.RoleRouter),
		})
		if err != nil {
			return err
		}
		c.Metrics.ObserveProvisioned("router", ok)
		if ok {
			c.State.Routers++
		}
	}
	return nil
}
