package dispatch

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type executedCall struct {
	Op   string
	Path map[string]any
	Body Args
}

// recordingExecutor captures calls and replies from a per-operation table
type recordingExecutor struct {
	calls     []executedCall
	responses map[string]*Response
	errs      map[string]error
}

func (e *recordingExecutor) Execute(_ context.Context, op Operation, path map[string]any, body Args) (*Response, error) {
	e.calls = append(e.calls, executedCall{Op: op.Name, Path: path, Body: body})
	if err := e.errs[op.Name]; err != nil {
		return nil, err
	}
	if resp, ok := e.responses[op.Name]; ok {
		return resp, nil
	}
	return &Response{StatusCode: 200}, nil
}

func (e *recordingExecutor) last() executedCall {
	return e.calls[len(e.calls)-1]
}

func TestDispatcherRouting(t *testing.T) {
	tests := []struct {
		name     string
		op       string
		args     Args
		wantPath map[string]any
		wantBody Args
	}{
		{
			name:     "environment path params",
			op:       "get_sdis",
			args:     Args{"user_pk": "3"},
			wantPath: map[string]any{"user_pk": "3"},
			wantBody: Args{},
		},
		{
			name:     "machine create",
			op:       "create_machine",
			args:     Args{"name": "machine0", "role": "workstation"},
			wantPath: map[string]any{"sdi_id": "9"},
			wantBody: Args{"name": "machine0", "role": "workstation"},
		},
		{
			name:     "machine vlan edit",
			op:       "edit_machine_vlan",
			args:     Args{"machine_id": "1", "interface_id": "2", "vlan_id": 20, "ip": "10.0.0.5"},
			wantPath: map[string]any{"sdi_id": "9", "machine_id": "1", "interface_id": "2", "vlan_id": 20},
			wantBody: Args{"ip": "10.0.0.5"},
		},
		{
			name:     "machine vlan add keeps vlan_id in body",
			op:       "add_machine_vlan",
			args:     Args{"machine_id": "1", "interface_id": "2", "vlan": 20, "vlan_id": 20},
			wantPath: map[string]any{"sdi_id": "9", "machine_id": "1", "interface_id": "2"},
			wantBody: Args{"vlan": 20, "vlan_id": 20},
		},
		{
			name:     "drive slot",
			op:       "remove_disk",
			args:     Args{"machine_id": "1", "disk_slot": 0},
			wantPath: map[string]any{"sdi_id": "9", "machine_id": "1", "disk_slot": 0},
			wantBody: Args{},
		},
		{
			name:     "service edit",
			op:       "edit_service",
			args:     Args{"network_id": "4", "vid": 1, "dhcp": true},
			wantPath: map[string]any{"sdi_id": "9", "network_id": "4", "vid": 1},
			wantBody: Args{"dhcp": true},
		},
		{
			name:     "service add keeps vid in body",
			op:       "add_service",
			args:     Args{"network_id": "4", "vid": 1},
			wantPath: map[string]any{"sdi_id": "9", "network_id": "4"},
			wantBody: Args{"vid": 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &recordingExecutor{}
			d := New(exec, zerolog.Nop())
			d.SetEnvironmentID("9")

			_, err := d.Call(context.Background(), tt.op, tt.args)
			require.NoError(t, err)
			require.Len(t, exec.calls, 1)

			call := exec.last()
			assert.Equal(t, tt.op, call.Op)
			assert.Equal(t, tt.wantPath, call.Path)
			assert.Equal(t, tt.wantBody, call.Body)
		})
	}
}

func TestDispatcherUnknownOperation(t *testing.T) {
	exec := &recordingExecutor{}
	d := New(exec, zerolog.Nop())

	_, err := d.Call(context.Background(), "launch_rockets", Args{"count": 3})
	require.ErrorIs(t, err, ErrUnknownOperation)
	assert.True(t, IsContractViolation(err))
	assert.Empty(t, exec.calls)
}

func TestHandlerDeclines(t *testing.T) {
	exec := &recordingExecutor{}
	h := NewNetworkHandler(exec, &Scope{})
	args := Args{"machine_id": "1", "name": "m"}

	resp, handled, err := h.Handle(context.Background(), "edit_machine", args)
	require.NoError(t, err)
	assert.False(t, handled)
	assert.Nil(t, resp)
	assert.Equal(t, Args{"machine_id": "1", "name": "m"}, args)
	assert.Empty(t, exec.calls)
}

func TestCreateEnvironmentSetsScope(t *testing.T) {
	exec := &recordingExecutor{
		responses: map[string]*Response{
			"create_sdi": {StatusCode: 201, Body: map[string]any{"sdi_id": "77"}},
		},
	}
	d := New(exec, zerolog.Nop())
	ctx := context.Background()
	assert.Empty(t, d.EnvironmentID())

	_, err := d.Call(ctx, "create_sdi", Args{"user_pk": "1", "name": "PCAP_SDI_0"})
	require.NoError(t, err)
	assert.Equal(t, "77", d.EnvironmentID())

	_, err = d.Call(ctx, "create_network", Args{"name": "Network_0", "mode": "switch"})
	require.NoError(t, err)
	assert.Equal(t, "77", exec.last().Path["sdi_id"])
}

func TestFailedCreateLeavesScope(t *testing.T) {
	exec := &recordingExecutor{
		errs: map[string]error{"create_sdi": &StatusError{Operation: "create_sdi", StatusCode: 500}},
	}
	d := New(exec, zerolog.Nop())
	d.SetEnvironmentID("5")

	_, err := d.Call(context.Background(), "create_sdi", Args{"user_pk": "1"})
	require.ErrorIs(t, err, ErrNoResult)
	assert.Equal(t, "5", d.EnvironmentID())
}

func TestMachineCallWithoutEnvironment(t *testing.T) {
	api := newFakeAPI(t, nil)
	caller, _, _ := newTestCaller(t, api)
	d := New(caller, zerolog.Nop())

	_, err := d.Call(context.Background(), "get_machines", nil)
	require.ErrorIs(t, err, ErrMissingPathParam)
	assert.Empty(t, api.Requests())
}
