// Package media normalizes the source-shaped media payloads into a primary image, an
// optional video and an ordered media list.
package media

import (
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"NewsDesk/internal/domain"
)

// Resolved is the media derived for a post. Empty strings mean "not found".
type Resolved struct {
	PrimaryImageURL string
	VideoURL        string
	MediaList       []domain.MediaItem
}

// HasVideo reports whether a playable video was extracted.
func (r Resolved) HasVideo() bool {
	return r.VideoURL != ""
}

// Resolve dispatches on the payload variant. A nil payload resolves to nothing.
func Resolve(payload domain.MediaPayload) Resolved {
	switch p := payload.(type) {
	case domain.SocialMedia:
		return resolveSocial(p)
	case *domain.SocialMedia:
		if p != nil {
			return resolveSocial(*p)
		}
	case domain.SyndicationMedia:
		return resolveSyndication(p)
	case *domain.SyndicationMedia:
		if p != nil {
			return resolveSyndication(*p)
		}
	case domain.ManualMedia:
		return resolveManual(p)
	case *domain.ManualMedia:
		if p != nil {
			return resolveManual(*p)
		}
	}
	return Resolved{}
}

func resolveSocial(p domain.SocialMedia) Resolved {
	var out Resolved

	for _, entry := range p.Entries {
		if entry.Type != "photo" {
			continue
		}
		url := photoURL(entry)
		if url == "" {
			continue
		}
		w, h := dimensions(entry)
		out.MediaList = append(out.MediaList, domain.MediaItem{Kind: domain.MediaKindPhoto, URL: url, Width: w, Height: h})
		if out.PrimaryImageURL == "" {
			out.PrimaryImageURL = url
		}
	}

	// only the first attachment can carry the post's video
	if len(p.Entries) > 0 && isVideo(p.Entries[0]) {
		first := p.Entries[0]
		if v, ok := BestMP4(first.Variants); ok {
			out.VideoURL = v.URL
			w, h := dimensions(first)
			out.MediaList = append(out.MediaList, domain.MediaItem{Kind: domain.MediaKindVideo, URL: v.URL, Width: w, Height: h})
			if out.PrimaryImageURL == "" {
				out.PrimaryImageURL = first.PreviewImageURL
			}
		}
	}

	return out
}

func isVideo(e domain.SocialMediaEntry) bool {
	return e.Type == "video" || e.Type == "animated_gif"
}

func photoURL(e domain.SocialMediaEntry) string {
	if e.URL != "" {
		return e.URL
	}
	return e.MediaURLHTTPS
}

// dimensions walks the provider-specific fields until one carries a size.
func dimensions(e domain.SocialMediaEntry) (int, int) {
	if e.Width > 0 && e.Height > 0 {
		return e.Width, e.Height
	}
	if e.OriginalInfo != nil && e.OriginalInfo.Width > 0 {
		return e.OriginalInfo.Width, e.OriginalInfo.Height
	}
	if e.Sizes != nil {
		if s := e.Sizes.Large; s != nil && s.Width > 0 {
			return s.Width, s.Height
		}
		if s := e.Sizes.Medium; s != nil && s.Width > 0 {
			return s.Width, s.Height
		}
	}
	return 0, 0
}

// BestMP4 picks the highest-bitrate mp4 variant. Equal bitrates keep their original order.
func BestMP4(variants []domain.VideoVariant) (domain.VideoVariant, bool) {
	mp4 := make([]domain.VideoVariant, 0, len(variants))
	for _, v := range variants {
		if isMP4(v.ContentType) && v.URL != "" {
			mp4 = append(mp4, v)
		}
	}
	if len(mp4) == 0 {
		return domain.VideoVariant{}, false
	}
	sort.SliceStable(mp4, func(i, j int) bool { return mp4[i].BitRate > mp4[j].BitRate })
	return mp4[0], true
}

func isMP4(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	return ct == "video/mp4" || ct == "mp4"
}

func resolveSyndication(p domain.SyndicationMedia) Resolved {
	var out Resolved

	// only the first enclosure may supply video
	for i, enc := range p.Enclosures {
		switch {
		case out.PrimaryImageURL == "" && strings.HasPrefix(enc.Type, "image/") && enc.URL != "":
			out.PrimaryImageURL = enc.URL
			out.MediaList = append(out.MediaList, domain.MediaItem{Kind: domain.MediaKindPhoto, URL: enc.URL})
		case i == 0 && isMP4(enc.Type) && enc.URL != "":
			out.VideoURL = enc.URL
			out.MediaList = append(out.MediaList, domain.MediaItem{Kind: domain.MediaKindVideo, URL: enc.URL})
		}
	}
	if out.PrimaryImageURL != "" {
		return out
	}

	image := strings.TrimSpace(p.Thumbnail)
	if image == "" {
		image = FirstInlineImage(p.ContentHTML)
	}
	if image != "" {
		out.PrimaryImageURL = image
		out.MediaList = append([]domain.MediaItem{{Kind: domain.MediaKindPhoto, URL: image}}, out.MediaList...)
	}
	return out
}

// FirstInlineImage returns the src of the first <img> in an HTML fragment.
func FirstInlineImage(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	var src string
	doc.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		if v, ok := img.Attr("src"); ok && strings.TrimSpace(v) != "" {
			src = strings.TrimSpace(v)
			return false
		}
		return true
	})
	return src
}

func resolveManual(p domain.ManualMedia) Resolved {
	url := strings.TrimSpace(p.ImageURL)
	if url == "" {
		return Resolved{}
	}
	return Resolved{
		PrimaryImageURL: url,
		MediaList:       []domain.MediaItem{{Kind: domain.MediaKindPhoto, URL: url, Width: p.Width, Height: p.Height}},
	}
}
