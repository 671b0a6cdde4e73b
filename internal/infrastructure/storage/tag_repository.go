package storage

import (
	"context"
	"database/sql"
	"fmt"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/ports"
)

// TagRepository persists tags keyed by slug.
type TagRepository struct {
	db *sql.DB
}

var _ ports.TagStore = (*TagRepository)(nil)

// NewTagRepository wires a sql.DB implementation.
func NewTagRepository(db *sql.DB) *TagRepository {
	return &TagRepository{db: db}
}

// Upsert returns the id for tag.Slug, inserting the tag when it is new. The first
// display name seen for a slug is kept.
func (r *TagRepository) Upsert(ctx context.Context, tag domain.Tag) (int64, error) {
	query, args, err := psql.Insert("tags").
		Columns("name", "slug").
		Values(tag.Name, tag.Slug).
		Suffix("ON CONFLICT (slug) DO UPDATE SET slug = EXCLUDED.slug RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build upsert: %w", err)
	}

	var id int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("upsert tag %s: %w", tag.Slug, err)
	}
	return id, nil
}
