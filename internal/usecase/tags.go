package usecase

import (
	"context"
	"log/slog"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/ports"
)

// TagRegistry resolves free-text tag names to stable ids.
type TagRegistry struct {
	store  ports.TagStore
	logger *slog.Logger
}

// NewTagRegistry wires the registry to its store.
func NewTagRegistry(store ports.TagStore, logger *slog.Logger) *TagRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &TagRegistry{store: store, logger: logger}
}

// GetOrCreate returns ids in input order. Names with an empty slug, repeated slugs and
// names whose storage call fails are skipped.
func (r *TagRegistry) GetOrCreate(ctx context.Context, names []string) []int64 {
	if r == nil || r.store == nil {
		return nil
	}

	ids := make([]int64, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		slug := domain.Slugify(name)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true

		id, err := r.store.Upsert(ctx, domain.Tag{Name: name, Slug: slug})
		if err != nil {
			r.logger.Warn("tag upsert failed", "tag", name, "slug", slug, "error", err)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
