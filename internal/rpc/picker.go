package rpc

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Mohsinsiddi/w3dash/internal/chain"
	"go.uber.org/zap"
)

// ErrNoHealthyRPC is returned when no configured endpoint is usable.
var ErrNoHealthyRPC = errors.New("no healthy RPC endpoint available")

// Discard nodes more than this many blocks behind the best.
const staleBlockThreshold = 3

const probeTimeout = 5 * time.Second

// Endpoint is one RPC endpoint with its measured attributes.
type Endpoint struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	ChainID     int64
	Healthy     bool
	Checked     bool
}

// Picker probes the configured endpoints and selects the fastest healthy one
// serving the required chain.
type Picker struct {
	urls    []string
	chainID int64
	log     *zap.Logger
}

// NewPicker creates a picker over urls, pinned to requiredChainID. logger may
// be nil.
func NewPicker(urls []string, requiredChainID int64, logger *zap.Logger) *Picker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Picker{urls: urls, chainID: requiredChainID, log: logger}
}

// Probe health-checks every configured endpoint concurrently.
func (p *Picker) Probe(ctx context.Context) []Endpoint {
	endpoints := make([]Endpoint, len(p.urls))
	var wg sync.WaitGroup
	for i, url := range p.urls {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			endpoints[i] = HealthCheck(ctx, url)
		}(i, url)
	}
	wg.Wait()
	return endpoints
}

// Pick probes the endpoints and returns the URL of the winner: the fastest
// healthy endpoint on the required chain that is not lagging the best block.
func (p *Picker) Pick(ctx context.Context) (string, error) {
	endpoints := p.Probe(ctx)

	var bestBlock uint64
	for _, e := range endpoints {
		if e.Healthy && e.BlockNumber > bestBlock {
			bestBlock = e.BlockNumber
		}
	}

	var winner *Endpoint
	for i := range endpoints {
		e := &endpoints[i]
		if !e.Healthy {
			p.log.Debug("rpc endpoint unhealthy", zap.String("url", e.URL))
			continue
		}
		if p.chainID != 0 && e.ChainID != p.chainID {
			p.log.Warn("rpc endpoint on wrong chain",
				zap.String("url", e.URL),
				zap.Int64("chain_id", e.ChainID))
			continue
		}
		if bestBlock > 0 && bestBlock-e.BlockNumber > staleBlockThreshold {
			continue
		}
		if winner == nil || e.Latency < winner.Latency {
			winner = e
		}
	}

	if winner == nil {
		return "", ErrNoHealthyRPC
	}
	p.log.Info("rpc endpoint selected",
		zap.String("url", winner.URL),
		zap.Duration("latency", winner.Latency))
	return winner.URL, nil
}

// HealthCheck pings one endpoint and reads its chain ID.
func HealthCheck(ctx context.Context, url string) Endpoint {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	c := chain.NewEVMClient(url)
	latency, blockNum, err := c.Ping(probeCtx)

	ep := Endpoint{
		URL:         url,
		Latency:     latency,
		BlockNumber: blockNum,
		Healthy:     err == nil,
		Checked:     true,
	}
	if err != nil {
		return ep
	}

	id, err := c.ChainID(probeCtx)
	if err != nil {
		ep.Healthy = false
		return ep
	}
	ep.ChainID = id
	return ep
}
