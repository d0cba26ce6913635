package dispatch

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
)

// Group is the resource family an operation belongs to
type Group string

const (
	GroupEnvironment Group = "environment"
	GroupMachine     Group = "machine"
	GroupNetwork     Group = "network"
)

// Operation describes one remote API call
type Operation struct {
	Name   string
	Group  Group
	Path   string
	Method string
	Params []string
}

var machineParams = []string{
	"name", "description", "memory", "sockets", "cores", "threads", "boot_priority", "role",
	"image_persist", "datetime", "boot_device", "boot_menu", "CPU_type", "video_card",
}

var interfaceParams = []string{"network", "nic", "mac", "hostname", "vlan_mode", "vlan_pvid"}

var operations = []Operation{
	{"get_users", GroupEnvironment, "accounts/users", http.MethodGet, nil},
	{"get_sdis", GroupEnvironment, "sdis/{user_pk}", http.MethodGet, nil},
	{"create_sdi", GroupEnvironment, "sdis/{user_pk}", http.MethodPost, []string{"name", "description"}},
	{"edit_sdi", GroupEnvironment, "sdis/{sdi_id}", http.MethodPut, []string{"user", "name", "description"}},
	{"run_sdi", GroupEnvironment, "sdis/{sdi_id}/start", http.MethodPost, nil},
	{"configure_sdi", GroupEnvironment, "sdis/{sdi_id}/settings", http.MethodPut, []string{
		"start_machines", "default_persistence", "max_run_time", "default_routing", "datetime",
		"default_oui", "snap_to_grid",
	}},

	{"get_machines", GroupMachine, "sdis/{sdi_id}/machines", http.MethodGet, nil},
	{"create_machine", GroupMachine, "sdis/{sdi_id}/machines", http.MethodPost, machineParams},
	{"edit_machine", GroupMachine, "sdis/{sdi_id}/machines/{machine_id}", http.MethodPut, machineParams},
	{"get_machine_interfaces", GroupMachine, "sdis/{sdi_id}/machines/{machine_id}/interfaces", http.MethodGet, nil},
	{"create_machine_interface", GroupMachine, "sdis/{sdi_id}/machines/{machine_id}/interfaces", http.MethodPost, interfaceParams},
	{"edit_machine_interface", GroupMachine, "sdis/{sdi_id}/machines/{machine_id}/interfaces/{interface_id}", http.MethodPut, interfaceParams},
	{"delete_machine_interface", GroupMachine, "sdis/{sdi_id}/machines/{machine_id}/interfaces/{interface_id}", http.MethodDelete, nil},
	{"add_machine_vlan", GroupMachine, "sdis/{sdi_id}/machines/{machine_id}/interfaces/{interface_id}/vlans", http.MethodPost, []string{"vlan", "ip", "ipv6"}},
	{"edit_machine_vlan", GroupMachine, "sdis/{sdi_id}/machines/{machine_id}/interfaces/{interface_id}/vlans/{vlan_id}", http.MethodPut, []string{"ip", "ipv6"}},
	{"delete_machine_vlan", GroupMachine, "sdis/{sdi_id}/machines/{machine_id}/interfaces/{interface_id}/vlans/{vlan_id}", http.MethodDelete, nil},
	{"get_drives", GroupMachine, "sdis/{sdi_id}/machines/{machine_id}/drives", http.MethodGet, nil},
	{"attach_drive", GroupMachine, "sdis/{sdi_id}/machines/{machine_id}/drives", http.MethodPost, []string{"master_id", "bus"}},
	{"edit_disk", GroupMachine, "sdis/{sdi_id}/machines/{machine_id}/drives/{disk_slot}", http.MethodPut, []string{"master_id", "bus"}},
	{"remove_disk", GroupMachine, "sdis/{sdi_id}/machines/{machine_id}/drives/{disk_slot}", http.MethodDelete, nil},
	{"reorder_drives", GroupMachine, "sdis/{sdi_id}/machines/{machine_id}/drives/order", http.MethodPut, []string{"order"}},

	{"get_networks", GroupNetwork, "sdis/{sdi_id}/networks", http.MethodGet, nil},
	{"create_network", GroupNetwork, "sdis/{sdi_id}/networks", http.MethodPost, []string{"name", "mode", "link", "services"}},
	{"edit_network", GroupNetwork, "sdis/{sdi_id}/networks/{network_id}", http.MethodPut, []string{"name", "description", "mode", "link", "services"}},
	{"get_services", GroupNetwork, "sdis/{sdi_id}/networks/{network_id}/services", http.MethodGet, nil},
	{"add_service", GroupNetwork, "sdis/{sdi_id}/networks/{network_id}/services", http.MethodPost, []string{"vid"}},
	{"edit_service", GroupNetwork, "sdis/{sdi_id}/networks/{network_id}/services/{vid}", http.MethodPut, []string{
		"vid", "ip", "netmask", "dhcp", "dns", "defaultgateway", "ipv6", "slaac", "defaultgatewayv6",
	}},
	{"delete_service", GroupNetwork, "sdis/{sdi_id}/networks/{network_id}/services/{vid}", http.MethodDelete, nil},
}

// Catalog maps operation names to their definitions
var Catalog = func() map[string]Operation {
	m := make(map[string]Operation, len(operations))
	for _, op := range operations {
		m[op.Name] = op
	}
	return m
}()

// OperationsIn returns the catalog entries of group
func OperationsIn(group Group) map[string]Operation {
	m := make(map[string]Operation)
	for name, op := range Catalog {
		if op.Group == group {
			m[name] = op
		}
	}
	return m
}

var placeholder = regexp.MustCompile(`\{(\w+)\}`)

// Placeholders returns the parameter names in template, in order
func Placeholders(template string) []string {
	var names []string
	for _, m := range placeholder.FindAllStringSubmatch(template, -1) {
		names = append(names, m[1])
	}
	return names
}

// Expand substitutes params into template. A placeholder without a
// non-empty value is an error.
func Expand(template string, params map[string]any) (string, error) {
	var missing []string
	out := placeholder.ReplaceAllStringFunc(template, func(m string) string {
		name := m[1 : len(m)-1]
		v, ok := params[name]
		s := FormatValue(v)
		if !ok || v == nil || s == "" {
			missing = append(missing, name)
			return m
		}
		return url.PathEscape(s)
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: %v in %s", ErrMissingPathParam, missing, template)
	}
	return out, nil
}

// FormatValue renders an argument the way it is sent on the wire
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
