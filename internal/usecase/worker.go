package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"path"
	"strings"
	"time"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/media"
	"NewsDesk/internal/ports"
)

const (
	defaultGenerateTimeout = 60 * time.Second
	postIDAttempts         = 3
	maxAssetBytes          = 10 << 20
)

// WorkerDeps wires the transformation worker. Generator, Queue and Posts are required;
// the rest are optional enrichments.
type WorkerDeps struct {
	Queue      ports.QueueStore
	Posts      ports.PostStore
	Tags       *TagRegistry
	Generator  ports.Generator
	Pacer      ports.Pacer
	Pages      ports.PageFetcher
	Assets     ports.AssetStore
	Downloader ports.Downloader
	Notifier   ports.Notifier
	Logger     *slog.Logger

	GenerateTimeout time.Duration
	Now             func() time.Time
	NewPostID       func() int64
}

// Worker drains the queue oldest first, one item at a time.
type Worker struct {
	queue      ports.QueueStore
	posts      ports.PostStore
	tags       *TagRegistry
	generator  ports.Generator
	pacer      ports.Pacer
	pages      ports.PageFetcher
	assets     ports.AssetStore
	downloader ports.Downloader
	notifier   ports.Notifier
	logger     *slog.Logger

	generateTimeout time.Duration
	now             func() time.Time
	newPostID       func() int64
}

// NewWorker constructs the transformation worker.
func NewWorker(deps WorkerDeps) *Worker {
	w := &Worker{
		queue:           deps.Queue,
		posts:           deps.Posts,
		tags:            deps.Tags,
		generator:       deps.Generator,
		pacer:           deps.Pacer,
		pages:           deps.Pages,
		assets:          deps.Assets,
		downloader:      deps.Downloader,
		notifier:        deps.Notifier,
		logger:          deps.Logger,
		generateTimeout: deps.GenerateTimeout,
		now:             deps.Now,
		newPostID:       deps.NewPostID,
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	if w.generateTimeout <= 0 {
		w.generateTimeout = defaultGenerateTimeout
	}
	if w.now == nil {
		w.now = time.Now
	}
	if w.newPostID == nil {
		w.newPostID = randomPostID
	}
	return w
}

// ProcessBatch handles up to maxItems queue items and returns how many were published or
// dropped. Items that hit an unexpected error stay queued for the next run. Only a failure
// to read the queue itself is returned.
func (w *Worker) ProcessBatch(ctx context.Context, maxItems int) (int, error) {
	if maxItems <= 0 {
		return 0, nil
	}

	items, err := w.queue.Oldest(ctx, maxItems)
	if err != nil {
		return 0, fmt.Errorf("%w: load queue: %w", domain.ErrStoreUnavailable, err)
	}

	processed := 0
	for _, item := range items {
		if w.pacer != nil {
			if err := w.pacer.Wait(ctx); err != nil {
				return processed, fmt.Errorf("wait for pacer: %w", err)
			}
		}

		log := w.logger.With("queue_id", item.ID, "source", item.SourceLabel)
		if err := w.processItem(ctx, item, log); err != nil {
			log.Error("queue item left for retry", "error", err)
			continue
		}
		processed++
	}

	w.logger.Info("batch finished", "pulled", len(items), "processed", processed)
	return processed, nil
}

func (w *Worker) processItem(ctx context.Context, item domain.QueueItem, log *slog.Logger) error {
	label, ok := ResolveAuthorLabel(item.Author, item.URL)
	if !ok {
		label = item.SourceLabel
	}

	gen, err := w.generate(ctx, item, label)
	if err != nil {
		log.Warn("transformation failed, dropping item", "error", err)
		if delErr := w.queue.Delete(ctx, item.ID); delErr != nil {
			return fmt.Errorf("drop failed item: %w", delErr)
		}
		return nil
	}

	resolved := media.Resolve(item.Media)
	w.mirrorPrimaryImage(ctx, &resolved, item.ID, log)

	post := domain.Post{
		Title:            gen.Title,
		Slug:             gen.Slug,
		Summary:          gen.Summary,
		Body:             gen.Content,
		ExternalSourceID: item.ID,
		CanonicalURL:     item.URL,
		PrimaryImageURL:  resolved.PrimaryImageURL,
		VideoURL:         resolved.VideoURL,
		MediaList:        resolved.MediaList,
		TagIDs:           w.tags.GetOrCreate(ctx, gen.Tags),
		Type:             domain.ResolvePostType(item.RequestedType, resolved.HasVideo()),
		PublishedAt:      w.now().UTC(),
		SourceName:       item.SourceLabel,
	}
	if post.Slug == "" {
		post.Slug = domain.Slugify(post.Title)
	}
	if gen.Category != "" {
		post.Categories = []string{gen.Category}
	}

	post, insertErr := w.insertPost(ctx, post)
	switch {
	case errors.Is(insertErr, domain.ErrDuplicate):
		log.Info("item already published, removing from queue", "error", insertErr)
	case insertErr != nil:
		return fmt.Errorf("persist post: %w", insertErr)
	default:
		log.Info("post published", "post_id", post.PostID, "type", post.Type, "tags", len(post.TagIDs))
	}

	if err := w.queue.Delete(ctx, item.ID); err != nil {
		return fmt.Errorf("remove published item: %w", err)
	}

	if insertErr == nil && w.notifier != nil {
		if err := w.notifier.PublishPost(ctx, post); err != nil {
			log.Warn("publish notification failed", "post_id", post.PostID, "error", err)
		}
	}
	return nil
}

func (w *Worker) generate(ctx context.Context, item domain.QueueItem, label string) (Generation, error) {
	if w.generator == nil {
		return Generation{}, fmt.Errorf("%w: generator not configured", domain.ErrTransformation)
	}

	var pageContext string
	if w.pages != nil && item.URL != "" && handleFromURL(item.URL) == "" {
		pageContext = w.pages.FetchText(ctx, item.URL)
	}

	callCtx, cancel := context.WithTimeout(ctx, w.generateTimeout)
	defer cancel()

	raw, err := w.generator.Generate(callCtx, BuildPrompt(item.Text, pageContext, label))
	if err != nil {
		return Generation{}, fmt.Errorf("%w: %w", domain.ErrTransformation, err)
	}
	return ParseGeneration(raw)
}

// insertPost retries with a fresh random id when only the id collided.
func (w *Worker) insertPost(ctx context.Context, post domain.Post) (domain.Post, error) {
	for attempt := 0; attempt < postIDAttempts; attempt++ {
		post.PostID = w.newPostID()
		err := w.posts.Insert(ctx, post)
		if !errors.Is(err, domain.ErrPostIDTaken) {
			return post, err
		}
	}
	return post, fmt.Errorf("post id collided %d times in a row", postIDAttempts)
}

// mirrorPrimaryImage copies the primary image to the asset store. The original URL is kept
// when anything fails.
func (w *Worker) mirrorPrimaryImage(ctx context.Context, resolved *media.Resolved, key string, log *slog.Logger) {
	if w.assets == nil || w.downloader == nil || resolved.PrimaryImageURL == "" {
		return
	}

	original := resolved.PrimaryImageURL
	body, err := w.downloader.Download(ctx, original)
	if err != nil {
		log.Warn("image download failed", "url", original, "error", err)
		return
	}
	data, err := io.ReadAll(io.LimitReader(body, maxAssetBytes+1))
	_ = body.Close()
	if err != nil || len(data) == 0 {
		log.Warn("image read failed", "url", original, "error", err)
		return
	}
	if len(data) > maxAssetBytes {
		log.Warn("image too large to mirror", "url", original, "limit_bytes", maxAssetBytes)
		return
	}

	stored, err := w.assets.Upload(ctx, data, assetKey(key, original))
	if err != nil {
		log.Warn("image upload failed", "url", original, "error", err)
		return
	}

	resolved.PrimaryImageURL = stored
	for i := range resolved.MediaList {
		if resolved.MediaList[i].URL == original {
			resolved.MediaList[i].URL = stored
		}
	}
}

func assetKey(queueID, imageURL string) string {
	ext := ".jpg"
	if u, err := url.Parse(imageURL); err == nil {
		if e := strings.ToLower(path.Ext(u.Path)); e == ".png" || e == ".webp" || e == ".gif" || e == ".jpeg" {
			ext = e
		}
	}
	return "posts/" + domain.Slugify(queueID) + ext
}

func randomPostID() int64 {
	return 100_000_000 + rand.Int64N(900_000_000)
}
