package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsDesk/internal/domain"
)

func TestBestMP4SelectsHighestBitrate(t *testing.T) {
	t.Parallel()

	v, ok := BestMP4([]domain.VideoVariant{
		{ContentType: "video/mp4", BitRate: 500000, URL: "https://v.example/500.mp4"},
		{ContentType: "video/mp4", BitRate: 1200000, URL: "https://v.example/1200.mp4"},
		{ContentType: "video/webm", BitRate: 2000000, URL: "https://v.example/2000.webm"},
	})
	require.True(t, ok)
	assert.Equal(t, "https://v.example/1200.mp4", v.URL)
}

func TestBestMP4TiesKeepOrder(t *testing.T) {
	t.Parallel()

	v, ok := BestMP4([]domain.VideoVariant{
		{ContentType: "video/mp4", BitRate: 800, URL: "first"},
		{ContentType: "video/mp4", BitRate: 800, URL: "second"},
	})
	require.True(t, ok)
	assert.Equal(t, "first", v.URL)
}

func TestBestMP4NoMP4(t *testing.T) {
	t.Parallel()

	_, ok := BestMP4([]domain.VideoVariant{{ContentType: "application/x-mpegURL", URL: "https://v.example/pl.m3u8"}})
	assert.False(t, ok)
}

func TestResolveSocialPhotos(t *testing.T) {
	t.Parallel()

	got := Resolve(domain.SocialMedia{Entries: []domain.SocialMediaEntry{
		{Type: "photo", URL: "https://img.example/1.jpg", Width: 1200, Height: 800},
		{Type: "photo", MediaURLHTTPS: "https://img.example/2.jpg", OriginalInfo: &domain.MediaSize{Width: 640, Height: 480}},
		{Type: "photo", URL: "https://img.example/3.jpg", Sizes: &domain.MediaSizes{Large: &domain.MediaSize{Width: 2048, Height: 1024}}},
		{Type: "photo", URL: "https://img.example/4.jpg"},
	}})

	assert.Equal(t, "https://img.example/1.jpg", got.PrimaryImageURL)
	assert.Empty(t, got.VideoURL)
	assert.Equal(t, []domain.MediaItem{
		{Kind: "photo", URL: "https://img.example/1.jpg", Width: 1200, Height: 800},
		{Kind: "photo", URL: "https://img.example/2.jpg", Width: 640, Height: 480},
		{Kind: "photo", URL: "https://img.example/3.jpg", Width: 2048, Height: 1024},
		{Kind: "photo", URL: "https://img.example/4.jpg", Width: 0, Height: 0},
	}, got.MediaList)
}

func TestResolveSocialVideoOnlyFromFirstEntry(t *testing.T) {
	t.Parallel()

	video := domain.SocialMediaEntry{
		Type:            "video",
		PreviewImageURL: "https://img.example/preview.jpg",
		Variants:        []domain.VideoVariant{{ContentType: "video/mp4", BitRate: 2176000, URL: "https://v.example/hd.mp4"}},
	}

	first := Resolve(domain.SocialMedia{Entries: []domain.SocialMediaEntry{video}})
	assert.Equal(t, "https://v.example/hd.mp4", first.VideoURL)
	assert.True(t, first.HasVideo())
	assert.Equal(t, "https://img.example/preview.jpg", first.PrimaryImageURL)

	second := Resolve(domain.SocialMedia{Entries: []domain.SocialMediaEntry{
		{Type: "photo", URL: "https://img.example/p.jpg"},
		video,
	}})
	assert.False(t, second.HasVideo())
	assert.Equal(t, "https://img.example/p.jpg", second.PrimaryImageURL)
}

func TestResolveSyndicationFallbackOrder(t *testing.T) {
	t.Parallel()

	html := `<p>Lead</p><img src="https://img.example/inline.jpg"><img src="https://img.example/second.jpg">`

	withEnclosure := Resolve(domain.SyndicationMedia{
		Enclosures:  []domain.Enclosure{{URL: "https://img.example/enc.jpg", Type: "image/jpeg"}},
		Thumbnail:   "https://img.example/thumb.jpg",
		ContentHTML: html,
	})
	assert.Equal(t, "https://img.example/enc.jpg", withEnclosure.PrimaryImageURL)

	withThumb := Resolve(domain.SyndicationMedia{Thumbnail: "https://img.example/thumb.jpg", ContentHTML: html})
	assert.Equal(t, "https://img.example/thumb.jpg", withThumb.PrimaryImageURL)

	inline := Resolve(domain.SyndicationMedia{ContentHTML: html})
	assert.Equal(t, "https://img.example/inline.jpg", inline.PrimaryImageURL)

	none := Resolve(domain.SyndicationMedia{ContentHTML: "<p>no pictures</p>"})
	assert.Empty(t, none.PrimaryImageURL)
	assert.Empty(t, none.MediaList)
}

func TestResolveSyndicationVideoEnclosure(t *testing.T) {
	t.Parallel()

	got := Resolve(domain.SyndicationMedia{Enclosures: []domain.Enclosure{{URL: "https://v.example/clip.mp4", Type: "video/mp4"}}})
	assert.Equal(t, "https://v.example/clip.mp4", got.VideoURL)
	assert.Empty(t, got.PrimaryImageURL)
}

func TestResolveSyndicationVideoOnlyFromFirstEnclosure(t *testing.T) {
	t.Parallel()

	got := Resolve(domain.SyndicationMedia{Enclosures: []domain.Enclosure{
		{URL: "https://img.example/enc.jpg", Type: "image/jpeg"},
		{URL: "https://v.example/clip.mp4", Type: "video/mp4"},
	}})
	assert.Equal(t, "https://img.example/enc.jpg", got.PrimaryImageURL)
	assert.Empty(t, got.VideoURL)
	assert.False(t, got.HasVideo())
	assert.Len(t, got.MediaList, 1)

	first := Resolve(domain.SyndicationMedia{Enclosures: []domain.Enclosure{
		{URL: "https://v.example/clip.mp4", Type: "video/mp4"},
		{URL: "https://img.example/enc.jpg", Type: "image/jpeg"},
	}})
	assert.Equal(t, "https://v.example/clip.mp4", first.VideoURL)
	assert.Equal(t, "https://img.example/enc.jpg", first.PrimaryImageURL)
}

func TestResolveManualAndNil(t *testing.T) {
	t.Parallel()

	got := Resolve(domain.ManualMedia{ImageURL: " https://img.example/m.jpg "})
	assert.Equal(t, "https://img.example/m.jpg", got.PrimaryImageURL)
	assert.Len(t, got.MediaList, 1)

	assert.Equal(t, Resolved{}, Resolve(nil))
}
