package inference

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"netcompiler/internal/domain"
	"netcompiler/internal/metrics"
	"netcompiler/internal/repository"
)

// Result summarises one inference run
type Result struct {
	Networks          int
	Machines          int
	Routers           int
	SyntheticGateways int
	Unaggregated      int
}

// Engine runs the inference passes against a repository
type Engine struct {
	repo    repository.Repository
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// NewEngine creates a new inference engine
func NewEngine(repo repository.Repository, log zerolog.Logger, m *metrics.Metrics) *Engine {
	return &Engine{repo: repo, log: log, metrics: m}
}

// Run executes the network pass followed by the machine pass
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	res := &Result{}

	if err := e.aggregateNetworks(ctx, res); err != nil {
		return nil, fmt.Errorf("network pass: %w", err)
	}
	if err := e.classifyMachines(ctx, res); err != nil {
		return nil, fmt.Errorf("machine pass: %w", err)
	}

	networks, err := e.repo.ListNetworks(ctx)
	if err != nil {
		return nil, err
	}
	res.Networks = len(networks)

	e.metrics.SetTopology("networks", res.Networks)
	e.metrics.SetTopology("machines", res.Machines)
	e.metrics.SetTopology("routers", res.Routers)
	e.metrics.SetTopology("synthetic_gateways", res.SyntheticGateways)

	e.log.Info().
		Int("networks", res.Networks).
		Int("machines", res.Machines).
		Int("routers", res.Routers).
		Int("synthetic_gateways", res.SyntheticGateways).
		Msg("inference complete")

	return res, nil
}

func (e *Engine) aggregateNetworks(ctx context.Context, res *Result) error {
	ips, err := e.repo.ListObservedIPs(ctx)
	if err != nil {
		return err
	}

	for _, ip := range ips {
		network, mask, ok := Aggregate(ip.Address)
		if !ok {
			res.Unaggregated++
			e.log.Debug().Str("ip", ip.Address).Msg("no classful aggregate")
			continue
		}
		if _, err := e.repo.UpsertNetwork(ctx, network, mask, ip.Address, ip.VLAN); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) classifyMachines(ctx context.Context, res *Result) error {
	macs, err := e.repo.ListMACs(ctx)
	if err != nil {
		return err
	}

	for macIndex, mac := range macs {
		addrs, err := e.repo.IPsForMAC(ctx, mac.Address)
		if err != nil {
			return err
		}

		conf := Score(len(addrs))
		if conf.IsRouter() {
			if err := e.splitRouter(ctx, macIndex, mac.Address, addrs, conf, res); err != nil {
				return err
			}
			continue
		}

		id, err := e.repo.InsertMachine(ctx, mac.Address, conf.Machine, conf.Router)
		if err != nil {
			return err
		}
		if err := e.repo.AssignIPs(ctx, id, addrs); err != nil {
			return err
		}
		res.Machines++
	}
	return nil
}

// splitRouter records mac as a router owning one gateway address and turns
// every other address it was seen with into its own machine
func (e *Engine) splitRouter(ctx context.Context, macIndex int, mac string, addrs []string, conf Confidence, res *Result) error {
	routerID, err := e.repo.InsertMachine(ctx, mac, conf.Machine, conf.Router)
	if err != nil {
		return err
	}
	res.Routers++

	gateway, rest := pickGateway(addrs)
	if gateway != "" {
		if err := e.repo.AssignIPs(ctx, routerID, []string{gateway}); err != nil {
			return err
		}
	} else if len(rest) > 0 {
		if err := e.synthesizeGateway(ctx, routerID, rest[0], res); err != nil {
			return err
		}
	}

	for i, addr := range rest {
		id, err := e.repo.InsertMachine(ctx, domain.SyntheticMachineKey(macIndex, i), MaxConfidence, MinConfidence)
		if err != nil {
			return err
		}
		if err := e.repo.AssignIPs(ctx, id, []string{addr}); err != nil {
			return err
		}
		res.Machines++
	}

	e.log.Debug().
		Str("mac", mac).
		Int("ips", len(addrs)).
		Str("gateway", gateway).
		Msg("split router")
	return nil
}

// synthesizeGateway gives the router the .1 address of from's /24 on from's
// VLAN. The address is not checked against other machines.
func (e *Engine) synthesizeGateway(ctx context.Context, routerID int64, from string, res *Result) error {
	gw, err := SyntheticGateway(from)
	if err != nil {
		e.log.Warn().Err(err).Str("ip", from).Msg("cannot derive gateway")
		return nil
	}

	network, mask, ok := Aggregate(gw)
	if !ok {
		e.log.Warn().Str("gateway", gw).Msg("synthetic gateway has no classful aggregate")
		return nil
	}

	vlan, err := e.repo.VLANOf(ctx, from)
	if err != nil {
		return err
	}

	networkID, err := e.repo.UpsertNetwork(ctx, network, mask, gw, vlan)
	if err != nil {
		return err
	}
	if _, err := e.repo.InsertSyntheticIP(ctx, gw, vlan, networkID, routerID); err != nil {
		return err
	}

	res.SyntheticGateways++
	return nil
}

// pickGateway returns the first .1 address and the remaining addresses in order
func pickGateway(addrs []string) (string, []string) {
	for i, addr := range addrs {
		if IsGateway(addr) {
			rest := make([]string, 0, len(addrs)-1)
			rest = append(rest, addrs[:i]...)
			rest = append(rest, addrs[i+1:]...)
			return addr, rest
		}
	}
	return "", addrs
}
