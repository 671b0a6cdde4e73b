package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/ports"
)

const postsPrimaryKey = "posts_pkey"

// PostRepository persists published posts into Postgres.
type PostRepository struct {
	db  *sql.DB
	now func() time.Time
}

var _ ports.PostStore = (*PostRepository)(nil)

// NewPostRepository wires a sql.DB implementation.
func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db: db, now: time.Now}
}

// Insert stores a post. Unique violations map to domain.ErrPostIDTaken for the random id
// and domain.ErrDuplicate for the source id or canonical URL.
func (r *PostRepository) Insert(ctx context.Context, post domain.Post) error {
	mediaList := post.MediaList
	if mediaList == nil {
		mediaList = []domain.MediaItem{}
	}
	media, err := json.Marshal(mediaList)
	if err != nil {
		return fmt.Errorf("marshal media list: %w", err)
	}

	tagIDs := post.TagIDs
	if tagIDs == nil {
		tagIDs = []int64{}
	}
	categories := post.Categories
	if categories == nil {
		categories = []string{}
	}

	query, args, err := psql.Insert("posts").
		Columns("post_id", "title", "slug", "summary", "body", "external_source_id", "canonical_url",
			"primary_image_url", "video_url", "media_list", "tag_ids", "categories", "type",
			"published_at", "source_name").
		Values(post.PostID, post.Title, post.Slug, post.Summary, post.Body,
			nullString(post.ExternalSourceID), nullString(post.CanonicalURL),
			nullString(post.PrimaryImageURL), nullString(post.VideoURL), string(media),
			pq.Array(tagIDs), pq.Array(categories), post.Type, post.PublishedAt, post.SourceName).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if constraint, ok := uniqueConstraint(err); ok {
			if constraint == postsPrimaryKey {
				return fmt.Errorf("insert post %d: %w", post.PostID, domain.ErrPostIDTaken)
			}
			return fmt.Errorf("insert post %d (%s): %w", post.PostID, constraint, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// ExistingSourceIDs returns the external ids that already produced a post.
func (r *PostRepository) ExistingSourceIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	return r.distinctIn(ctx, "external_source_id", ids)
}

// ExistingURLs returns the canonical URLs that already belong to a post.
func (r *PostRepository) ExistingURLs(ctx context.Context, urls []string) (map[string]bool, error) {
	return r.distinctIn(ctx, "canonical_url", urls)
}

func (r *PostRepository) distinctIn(ctx context.Context, column string, values []string) (map[string]bool, error) {
	if len(values) == 0 {
		return map[string]bool{}, nil
	}

	query, args, err := psql.Select(column).
		Distinct().
		From("posts").
		Where(column+" = ANY(?)", pq.Array(values)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", column, err)
	}
	return scanStringSet(rows)
}

// Recent returns posts published within window, newest first.
func (r *PostRepository) Recent(ctx context.Context, window time.Duration) ([]domain.PostRef, error) {
	query, args, err := psql.Select("external_source_id", "canonical_url", "title", "published_at").
		From("posts").
		Where(sq.GtOrEq{"published_at": r.now().Add(-window)}).
		OrderBy("published_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent posts: %w", err)
	}
	defer rows.Close()

	var refs []domain.PostRef
	for rows.Next() {
		var (
			ref      domain.PostRef
			sourceID sql.NullString
			url      sql.NullString
		)
		if err := rows.Scan(&sourceID, &url, &ref.Title, &ref.PublishedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		ref.ExternalSourceID = sourceID.String
		ref.CanonicalURL = url.String
		refs = append(refs, ref)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return refs, nil
}
