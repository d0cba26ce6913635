// Package codec renders observation store snapshots in export formats.
package codec

import (
	"fmt"
	"io"
	"sort"

	"netcompiler/internal/domain"
)

// Exporter writes a snapshot in one format
type Exporter interface {
	Export(snap *domain.Snapshot, w io.Writer) error
	Format() string
}

// ForFormat returns the exporter registered for format
func ForFormat(format string) (Exporter, error) {
	switch format {
	case "json":
		return NewJSONCodec(), nil
	case "yaml", "yml", "":
		return NewYAMLCodec(), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// WriteVLANSummary writes one "vlan N: count" line per VLAN in ascending order
func WriteVLANSummary(snap *domain.Snapshot, w io.Writer) error {
	counts := snap.VLANCounts()
	vlans := make([]int, 0, len(counts))
	for v := range counts {
		vlans = append(vlans, v)
	}
	sort.Ints(vlans)

	for _, v := range vlans {
		if _, err := fmt.Fprintf(w, "vlan %d: %d\n", v, counts[v]); err != nil {
			return err
		}
	}
	return nil
}
