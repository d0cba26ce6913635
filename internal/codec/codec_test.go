package codec

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"netcompiler/internal/domain"
)

func testSnapshot() *domain.Snapshot {
	router := int64(1)
	host := int64(2)
	network := int64(1)
	return &domain.Snapshot{
		IPs: []domain.IPRecord{
			{ID: 1, Address: "10.0.0.1", VLAN: 1, NetworkID: &network, MachineID: &router},
			{ID: 2, Address: "10.0.0.2", VLAN: 1, NetworkID: &network, MachineID: &host},
			{ID: 3, Address: "10.0.0.3", VLAN: 20},
		},
		MACs:     []domain.MACRecord{{ID: 1, Address: "aa:aa"}},
		Networks: []domain.NetworkAggregate{{ID: 1, Network: "10.0.0.0", Mask: "255.0.0.0", VLAN: 1}},
		Machines: []domain.Machine{
			{ID: 1, Key: "aa:aa", MachineConfidence: 0, RouterConfidence: 1},
			{ID: 2, Key: "0:0", MachineConfidence: 1, RouterConfidence: 0},
		},
		Environment:     &domain.EnvironmentBinding{RemoteID: "7", Name: "PCAP_SDI_0"},
		NetworkBindings: []domain.NetworkBinding{{NetworkID: 1, RemoteID: "n-1", Name: "Network_1"}},
		MachineBindings: []domain.MachineBinding{{MachineID: 1, RemoteID: "m-1", Name: "machine1"}},
	}
}

func TestForFormat(t *testing.T) {
	tests := []struct {
		format  string
		want    string
		wantErr bool
	}{
		{"json", "json", false},
		{"yaml", "yaml", false},
		{"", "yaml", false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			exp, err := ForFormat(tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, exp.Format())
		})
	}
}

func TestYAMLExport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLCodec().Export(testSnapshot(), &buf))

	var doc yamlTopology
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))

	require.NotNil(t, doc.Environment)
	assert.Equal(t, "PCAP_SDI_0", doc.Environment.Name)

	require.Len(t, doc.Networks, 1)
	assert.Equal(t, "n-1", doc.Networks[0].RemoteID)

	require.Len(t, doc.Machines, 2)
	assert.Equal(t, "router", doc.Machines[0].Role)
	assert.Equal(t, []string{"10.0.0.1@1"}, doc.Machines[0].IPs)
	assert.Equal(t, "m-1", doc.Machines[0].RemoteID)
	assert.Equal(t, "workstation", doc.Machines[1].Role)
	assert.Empty(t, doc.Machines[1].RemoteID)

	assert.Equal(t, 3, doc.Observed.IPs)
	assert.Equal(t, map[int]int{1: 2, 20: 1}, doc.Observed.VLANs)
}

func TestJSONExport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONCodec().Export(testSnapshot(), &buf))

	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(buf.Bytes(), &snap))
	assert.Len(t, snap.IPs, 3)
	assert.Equal(t, "7", snap.Environment.RemoteID)
}

func TestWriteVLANSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteVLANSummary(testSnapshot(), &buf))
	assert.Equal(t, "vlan 1: 2\nvlan 20: 1\n", buf.String())
}
