package parser

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"NewsDesk/internal/config"
	"NewsDesk/internal/ports"
	"NewsDesk/internal/scanner"
)

const maxConcurrentSources = 4

// StrategySource implements CandidateSource via registered scanner strategies.
type StrategySource struct {
	registry *scanner.Registry
	sources  []config.SourceConfig
	logger   *slog.Logger
}

var _ ports.CandidateSource = (*StrategySource)(nil)

// NewStrategySource wires scanner registry with config-defined sources.
func NewStrategySource(reg *scanner.Registry, sources []config.SourceConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sources:  sources,
		logger:   log,
	}
}

// FetchAll runs each configured source concurrently. Results keep config order and a
// failure only affects its own entry.
func (s *StrategySource) FetchAll(ctx context.Context) []ports.SourceResult {
	results := make([]ports.SourceResult, len(s.sources))
	s.debug("fetch all", "sources", len(s.sources))

	var g errgroup.Group
	g.SetLimit(maxConcurrentSources)
	for i, src := range s.sources {
		g.Go(func() error {
			results[i] = s.fetchOne(ctx, src)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (s *StrategySource) fetchOne(ctx context.Context, src config.SourceConfig) (res ports.SourceResult) {
	res.Source = src.Name
	defer func() {
		if r := recover(); r != nil {
			res.Candidates = nil
			res.Err = fmt.Errorf("source %s panicked: %v", src.Name, r)
		}
	}()

	if s.registry == nil {
		res.Err = fmt.Errorf("scanner registry is not configured")
		return res
	}

	strategy, err := s.registry.Resolve(src.Adapter)
	if err != nil {
		res.Err = fmt.Errorf("source %s: %w", src.Name, err)
		return res
	}

	req := scanner.Request{
		SourceName:    src.Name,
		RequestedType: src.RequestedType,
		MaxItems:      src.MaxItems,
		Options:       src.Options,
		Endpoints:     toScannerEndpoints(src.Endpoints),
	}

	s.debug("process source", "source", src.Name, "adapter", src.Adapter, "endpoints", len(src.Endpoints))
	candidates, err := strategy.FetchRecent(ctx, req)
	if err != nil {
		res.Err = fmt.Errorf("fetch source %s: %w", src.Name, err)
		return res
	}

	for i := range candidates {
		if candidates[i].SourceName == "" {
			candidates[i].SourceName = src.Name
		}
	}
	s.debug("source produced candidates", "source", src.Name, "count", len(candidates))
	res.Candidates = candidates
	return res
}

func toScannerEndpoints(cfg []config.EndpointConfig) []scanner.Endpoint {
	endpoints := make([]scanner.Endpoint, 0, len(cfg))
	for _, ep := range cfg {
		endpoints = append(endpoints, scanner.Endpoint{
			Name: ep.Name,
			URL:  ep.URL,
		})
	}
	return endpoints
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
