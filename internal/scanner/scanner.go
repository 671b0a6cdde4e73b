package scanner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"NewsDesk/internal/domain"
)

// Endpoint describes a concrete upstream address provided by config (a feed URL, an account).
type Endpoint struct {
	Name string
	URL  string
}

// Request carries all parameters required to fetch one source.
type Request struct {
	SourceName    string
	RequestedType string
	MaxItems      int
	Endpoints     []Endpoint
	Options       map[string]string
}

// Scanner captures a single adapter implementation (social API, RSS, etc.).
type Scanner interface {
	Name() string
	FetchRecent(ctx context.Context, req Request) ([]domain.Candidate, error)
}

// ErrUnknownAdapter is returned by Resolve for names nothing registered under.
var ErrUnknownAdapter = errors.New("adapter is not registered")

// Registry keeps a mapping from adapter names to their implementations.
// Names are matched case-insensitively.
type Registry struct {
	scanners map[string]Scanner
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{scanners: map[string]Scanner{}}
}

// Register adds or replaces a scanner implementation.
func (r *Registry) Register(scanner Scanner) {
	if r.scanners == nil {
		r.scanners = map[string]Scanner{}
	}
	r.scanners[adapterKey(scanner.Name())] = scanner
}

// Resolve returns a scanner by name or ErrUnknownAdapter.
func (r *Registry) Resolve(name string) (Scanner, error) {
	if scanner, ok := r.scanners[adapterKey(name)]; ok {
		return scanner, nil
	}
	return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownAdapter, name, strings.Join(r.Names(), ", "))
}

// Names lists registered adapters in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.scanners))
	for name := range r.scanners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func adapterKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
