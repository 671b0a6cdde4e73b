package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/ports"
)

var queueColumns = []string{
	"id", "title", "text", "url", "media", "author", "requested_type", "source_label", "enqueued_at",
}

// QueueRepository persists pending work items into Postgres.
type QueueRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ ports.QueueStore = (*QueueRepository)(nil)

// NewQueueRepository wires a sql.DB implementation.
func NewQueueRepository(db *sql.DB, logger *slog.Logger) *QueueRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueueRepository{db: db, logger: logger}
}

// InsertMany writes all items in one statement. Existing ids are skipped by the
// primary key, so the affected row count is the number actually enqueued.
func (r *QueueRepository) InsertMany(ctx context.Context, items []domain.QueueItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	insert := psql.Insert("queue_items").Columns(queueColumns...)
	for _, item := range items {
		media, err := domain.MarshalMediaPayload(item.Media)
		if err != nil {
			return 0, fmt.Errorf("item %s: %w", item.ID, err)
		}
		var author []byte
		if item.Author != nil {
			if author, err = json.Marshal(item.Author); err != nil {
				return 0, fmt.Errorf("item %s: marshal author: %w", item.ID, err)
			}
		}
		insert = insert.Values(
			item.ID,
			item.Title,
			item.Text,
			nullString(item.URL),
			jsonParam(media),
			jsonParam(author),
			item.RequestedType,
			item.SourceLabel,
			item.EnqueuedAt,
		)
	}

	query, args, err := insert.Suffix("ON CONFLICT (id) DO NOTHING").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert queue items: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(affected), nil
}

// ExistingIDs returns a map with the ids that are currently queued.
func (r *QueueRepository) ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	if len(ids) == 0 {
		return map[string]bool{}, nil
	}

	query, args, err := psql.Select("id").From("queue_items").Where("id = ANY(?)", pq.Array(ids)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query queued: %w", err)
	}
	return scanStringSet(rows)
}

// ExistingURLs returns a map with the source URLs of currently queued items.
func (r *QueueRepository) ExistingURLs(ctx context.Context, urls []string) (map[string]bool, error) {
	if len(urls) == 0 {
		return map[string]bool{}, nil
	}

	query, args, err := psql.Select("url").
		Distinct().
		From("queue_items").
		Where("url = ANY(?)", pq.Array(urls)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query queued urls: %w", err)
	}
	return scanStringSet(rows)
}

// Oldest returns up to limit items, oldest enqueue time first. A row whose media or
// author JSON cannot be decoded is still returned, without that field, so it can be
// processed and removed instead of blocking the queue.
func (r *QueueRepository) Oldest(ctx context.Context, limit int) ([]domain.QueueItem, error) {
	if limit <= 0 {
		return nil, nil
	}

	query, args, err := psql.Select(queueColumns...).
		From("queue_items").
		OrderBy("enqueued_at ASC", "id ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query oldest: %w", err)
	}
	defer rows.Close()

	var items []domain.QueueItem
	for rows.Next() {
		var (
			item   domain.QueueItem
			url    sql.NullString
			media  []byte
			author []byte
		)
		if err := rows.Scan(&item.ID, &item.Title, &item.Text, &url, &media, &author,
			&item.RequestedType, &item.SourceLabel, &item.EnqueuedAt); err != nil {
			return nil, fmt.Errorf("scan queue item: %w", err)
		}
		item.URL = url.String

		if item.Media, err = domain.UnmarshalMediaPayload(media); err != nil {
			r.logger.Warn("queue item media unreadable, dropping media", "queue_id", item.ID, "error", err)
			item.Media = nil
		}
		if len(author) > 0 {
			var a domain.Author
			if err := json.Unmarshal(author, &a); err != nil {
				r.logger.Warn("queue item author unreadable, dropping author", "queue_id", item.ID, "error", err)
			} else {
				item.Author = &a
			}
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate queue: %w", err)
	}
	return items, nil
}

// Delete removes a queue item. Deleting a missing id is not an error.
func (r *QueueRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM queue_items WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete queue item %s: %w", id, err)
	}
	return nil
}
