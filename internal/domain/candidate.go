package domain

import "time"

// DefaultPostType is requested when a source does not ask for anything specific.
const DefaultPostType = "normal_post"

// Author describes who wrote an upstream item, as far as the source knows.
type Author struct {
	DisplayName string `json:"display_name,omitempty"`
	Handle      string `json:"handle,omitempty"`
}

// Candidate is an item discovered by a source adapter that has not been queued yet.
type Candidate struct {
	// ExternalID is unique within its source. For feed items it is a generated surrogate.
	ExternalID string

	// Surrogate marks ExternalID as generated rather than issued by the upstream platform.
	// Only surrogate candidates go through fuzzy title matching.
	Surrogate bool

	Title         string
	RawText       string
	SourceURL     string
	Media         MediaPayload
	Author        *Author
	RequestedType string
	SourceName    string
	PublishedAt   time.Time
}

// QueueItem is a deduplicated unit of pending work. It is only ever inserted or deleted.
type QueueItem struct {
	ID            string
	Title         string
	Text          string
	URL           string
	Media         MediaPayload
	Author        *Author
	RequestedType string
	SourceLabel   string
	EnqueuedAt    time.Time
}

// ToQueueItem converts an accepted candidate into the queued representation.
func (c Candidate) ToQueueItem(enqueuedAt time.Time) QueueItem {
	requested := c.RequestedType
	if requested == "" {
		requested = DefaultPostType
	}
	return QueueItem{
		ID:            c.ExternalID,
		Title:         c.Title,
		Text:          c.RawText,
		URL:           c.SourceURL,
		Media:         c.Media,
		Author:        c.Author,
		RequestedType: requested,
		SourceLabel:   c.SourceName,
		EnqueuedAt:    enqueuedAt,
	}
}
