package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"netcompiler/internal/domain"
	"netcompiler/internal/metrics"
	"netcompiler/internal/repository"
)

// IngestService applies the redundancy rules to captured packets
type IngestService struct {
	repo    repository.Repository
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// NewIngestService creates a new ingest service
func NewIngestService(repo repository.Repository, log zerolog.Logger, m *metrics.Metrics) *IngestService {
	return &IngestService{repo: repo, log: log, metrics: m}
}

// IngestIP stores an IP packet. Returns false if every value it carries was
// already known, in which case no packet row is written.
func (s *IngestService) IngestIP(ctx context.Context, pkt *domain.IPPacket) (bool, error) {
	var f Flagger
	vlan := pkt.EffectiveVLAN()

	steps := []func() (bool, error){
		func() (bool, error) { return s.repo.InsertIP(ctx, pkt.SourceIP, vlan) },
		func() (bool, error) { return s.repo.InsertIP(ctx, pkt.DestIP, vlan) },
		func() (bool, error) { return s.repo.InsertMAC(ctx, pkt.SourceMAC) },
		func() (bool, error) { return s.repo.InsertMAC(ctx, pkt.DestMAC) },
		func() (bool, error) { return s.repo.InsertHost(ctx, deref(pkt.Host)) },
		func() (bool, error) { return s.repo.InsertUserAgent(ctx, deref(pkt.UserAgent)) },
		func() (bool, error) { return s.repo.InsertServer(ctx, deref(pkt.Server)) },
	}
	if err := run(&f, steps); err != nil {
		return false, fmt.Errorf("failed to ingest ip packet: %w", err)
	}

	if f.AllFalse() {
		s.metrics.ObservePacket(string(domain.PacketTypeIP), false)
		return false, nil
	}

	if err := s.repo.InsertIPPacket(ctx, pkt); err != nil {
		return false, err
	}
	s.metrics.ObservePacket(string(domain.PacketTypeIP), true)
	s.log.Debug().
		Str("src", pkt.SourceIP).
		Str("dst", pkt.DestIP).
		Int("vlan", vlan).
		Msg("stored ip packet")
	return true, nil
}

// IngestDHCP stores a DHCP packet. A request contributes its client MAC; a
// response contributes all four addresses and is ignored unless complete.
func (s *IngestService) IngestDHCP(ctx context.Context, pkt *domain.DHCPPacket) (bool, error) {
	var (
		f     Flagger
		steps []func() (bool, error)
	)

	switch {
	case pkt.Request && pkt.ClientMAC != nil:
		steps = append(steps, func() (bool, error) { return s.repo.InsertMAC(ctx, *pkt.ClientMAC) })
	case !pkt.Request && pkt.Complete():
		steps = append(steps,
			func() (bool, error) { return s.repo.InsertIP(ctx, *pkt.ClientIP, domain.DefaultVLAN) },
			func() (bool, error) { return s.repo.InsertIP(ctx, *pkt.ServerIP, domain.DefaultVLAN) },
			func() (bool, error) { return s.repo.InsertMAC(ctx, *pkt.ClientMAC) },
			func() (bool, error) { return s.repo.InsertMAC(ctx, *pkt.ServerMAC) },
		)
	default:
		s.log.Debug().Bool("request", pkt.Request).Msg("skipping dhcp packet without addresses")
		return false, nil
	}

	if err := run(&f, steps); err != nil {
		return false, fmt.Errorf("failed to ingest dhcp packet: %w", err)
	}

	if f.AllFalse() {
		s.metrics.ObservePacket(string(domain.PacketTypeDHCP), false)
		return false, nil
	}

	if err := s.repo.InsertDHCPPacket(ctx, pkt); err != nil {
		return false, err
	}
	s.metrics.ObservePacket(string(domain.PacketTypeDHCP), true)
	return true, nil
}

func run(f *Flagger, steps []func() (bool, error)) error {
	for _, step := range steps {
		inserted, err := step()
		if err != nil {
			return err
		}
		f.Test(inserted)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
