package domain

import (
	"reflect"
	"testing"
)

func TestMediaPayloadCodecKeepsVariant(t *testing.T) {
	t.Parallel()

	payloads := []MediaPayload{
		SocialMedia{Entries: []SocialMediaEntry{{
			Type:     "video",
			Variants: []VideoVariant{{ContentType: "video/mp4", BitRate: 832000, URL: "https://video.example/v.mp4"}},
		}}},
		SyndicationMedia{Thumbnail: "https://img.example/t.jpg", ContentHTML: "<p>x</p>"},
		ManualMedia{ImageURL: "https://img.example/m.jpg"},
	}

	for _, p := range payloads {
		raw, err := MarshalMediaPayload(p)
		if err != nil {
			t.Fatalf("marshal %s: %v", p.PayloadKind(), err)
		}
		got, err := UnmarshalMediaPayload(raw)
		if err != nil {
			t.Fatalf("unmarshal %s: %v", p.PayloadKind(), err)
		}
		if !reflect.DeepEqual(got, p) {
			t.Fatalf("payload changed: got %#v, want %#v", got, p)
		}
	}
}

func TestUnmarshalMediaPayloadRejectsUnknownKind(t *testing.T) {
	t.Parallel()

	if _, err := UnmarshalMediaPayload([]byte(`{"kind":"hologram","data":{}}`)); err == nil {
		t.Fatal("expected error for unknown kind")
	}

	p, err := UnmarshalMediaPayload(nil)
	if err != nil || p != nil {
		t.Fatalf("expected nil payload for empty input, got %#v, %v", p, err)
	}
}
