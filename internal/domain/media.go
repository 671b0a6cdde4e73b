package domain

import (
	"encoding/json"
	"fmt"
)

// Media payload kinds used as the JSON discriminator.
const (
	PayloadSocial      = "social"
	PayloadSyndication = "syndication"
	PayloadManual      = "manual"
)

// MediaPayload is the source-shaped media attached to a candidate. It is one of
// SocialMedia, SyndicationMedia or ManualMedia.
type MediaPayload interface {
	PayloadKind() string
}

// SocialMedia mirrors the attachment structure of the social-post API.
type SocialMedia struct {
	Entries []SocialMediaEntry `json:"entries"`
}

// SocialMediaEntry is one attachment. Dimension fields vary by provider revision, so
// several optional shapes are kept.
type SocialMediaEntry struct {
	Type            string         `json:"type"`
	URL             string         `json:"url,omitempty"`
	MediaURLHTTPS   string         `json:"media_url_https,omitempty"`
	PreviewImageURL string         `json:"preview_image_url,omitempty"`
	Width           int            `json:"width,omitempty"`
	Height          int            `json:"height,omitempty"`
	OriginalInfo    *MediaSize     `json:"original_info,omitempty"`
	Sizes           *MediaSizes    `json:"sizes,omitempty"`
	Variants        []VideoVariant `json:"variants,omitempty"`
}

// MediaSize is a width/height pair.
type MediaSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// MediaSizes holds the legacy named renditions.
type MediaSizes struct {
	Large  *MediaSize `json:"large,omitempty"`
	Medium *MediaSize `json:"medium,omitempty"`
}

// VideoVariant is one encoding of a video attachment.
type VideoVariant struct {
	ContentType string `json:"content_type"`
	BitRate     int    `json:"bit_rate"`
	URL         string `json:"url"`
}

// SyndicationMedia carries what a feed item exposes about its media.
type SyndicationMedia struct {
	Enclosures  []Enclosure `json:"enclosures,omitempty"`
	Thumbnail   string      `json:"thumbnail,omitempty"`
	ContentHTML string      `json:"content_html,omitempty"`
}

// Enclosure is a feed enclosure.
type Enclosure struct {
	URL  string `json:"url"`
	Type string `json:"type"`
}

// ManualMedia is a single image supplied by hand.
type ManualMedia struct {
	ImageURL string `json:"image_url"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

func (SocialMedia) PayloadKind() string      { return PayloadSocial }
func (SyndicationMedia) PayloadKind() string { return PayloadSyndication }
func (ManualMedia) PayloadKind() string      { return PayloadManual }

type payloadEnvelope struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// MarshalMediaPayload encodes a payload with its kind so it can be restored from storage.
// A nil payload encodes to nil.
func MarshalMediaPayload(p MediaPayload) ([]byte, error) {
	if p == nil {
		return nil, nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", p.PayloadKind(), err)
	}
	return json.Marshal(payloadEnvelope{Kind: p.PayloadKind(), Data: data})
}

// UnmarshalMediaPayload restores a payload written by MarshalMediaPayload.
func UnmarshalMediaPayload(raw []byte) (MediaPayload, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var env payloadEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode payload envelope: %w", err)
	}

	switch env.Kind {
	case PayloadSocial:
		var p SocialMedia
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("decode social payload: %w", err)
		}
		return p, nil
	case PayloadSyndication:
		var p SyndicationMedia
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("decode syndication payload: %w", err)
		}
		return p, nil
	case PayloadManual:
		var p ManualMedia
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("decode manual payload: %w", err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown media payload kind %q", env.Kind)
	}
}
