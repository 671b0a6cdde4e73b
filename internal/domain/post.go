package domain

import "time"

// Post types stored on published posts.
const (
	TypeNormalPost  = DefaultPostType
	TypeNormalVideo = "normal_video"
)

// Media kinds used in MediaItem.Kind.
const (
	MediaKindPhoto = "photo"
	MediaKindVideo = "video"
)

// MediaItem is a single resolved asset attached to a post.
type MediaItem struct {
	Kind   string `json:"kind"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Post is the finished article produced from a queue item.
type Post struct {
	PostID           int64
	Title            string
	Slug             string
	Summary          string
	Body             string
	ExternalSourceID string
	CanonicalURL     string
	PrimaryImageURL  string
	VideoURL         string
	MediaList        []MediaItem
	TagIDs           []int64
	Categories       []string
	Type             string
	PublishedAt      time.Time
	SourceName       string
}

// PostRef is the slice of a post needed for duplicate detection.
type PostRef struct {
	ExternalSourceID string
	CanonicalURL     string
	Title            string
	PublishedAt      time.Time
}

// ResolvePostType maps the requested type to the stored one. Video presence promotes the
// default type to a video post but never downgrades an explicit request; without a video
// only the default type is allowed.
func ResolvePostType(requested string, hasVideo bool) string {
	if !hasVideo {
		return TypeNormalPost
	}
	if requested == "" || requested == DefaultPostType {
		return TypeNormalVideo
	}
	return requested
}
