package chat

import (
	"testing"

	"github.com/AltairaLabs/promptpack-go/internal/render"
	"github.com/AltairaLabs/promptpack-go/internal/schema"
)

func strPtr(s string) *string { return &s }

func TestSystemMessage(t *testing.T) {
	t.Parallel()

	pack := &schema.Pack{
		ID:      "demo",
		Name:    "Demo",
		Version: "1.0.0",
		Prompts: map[string]schema.Prompt{
			"greet": {
				ID:             "greet",
				Name:           "Greet",
				Version:        "1.0.0",
				SystemTemplate: "Hello {{who}}",
				Variables: []schema.Variable{
					{Name: "who", Type: "string", Required: true},
				},
			},
		},
	}
	r, err := render.New(pack, "greet")
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	msg, err := SystemMessage(r, map[string]any{"who": "world"})
	if err != nil {
		t.Fatalf("SystemMessage: %v", err)
	}
	if msg.Role != "system" {
		t.Fatalf("Role: got %q", msg.Role)
	}
	if msg.Content != "Hello world" {
		t.Fatalf("Content: got %v", msg.Content)
	}
}

func TestFromPartsSingleTextCollapses(t *testing.T) {
	t.Parallel()

	msg := FromParts("user", []schema.ContentPart{
		{Type: "text", Text: strPtr("just text")},
	})
	if msg.Content != "just text" {
		t.Fatalf("Content: got %v want plain string", msg.Content)
	}
}

func TestFromPartsMixed(t *testing.T) {
	t.Parallel()

	msg := FromParts("user", []schema.ContentPart{
		{Type: "text", Text: strPtr("look:")},
		{Type: "image", Media: &schema.MediaReference{
			URL:      strPtr("https://example.com/a.png"),
			MIMEType: "image/png",
			Detail:   strPtr("high"),
		}},
	})

	blocks, ok := msg.Content.([]Block)
	if !ok {
		t.Fatalf("Content: got %T want []Block", msg.Content)
	}
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks want 2", len(blocks))
	}
	if blocks[0]["type"] != "text" {
		t.Fatalf("block 0: got %v", blocks[0])
	}
	if blocks[1]["type"] != "image_url" {
		t.Fatalf("block 1: got %v", blocks[1])
	}
	ref := blocks[1]["image_url"].(map[string]any)
	if ref["url"] != "https://example.com/a.png" || ref["detail"] != "high" {
		t.Fatalf("image ref: got %v", ref)
	}
}

func TestConvertPartsImageBase64(t *testing.T) {
	t.Parallel()

	blocks := ConvertParts([]schema.ContentPart{
		{Type: "image", Media: &schema.MediaReference{
			Base64:   strPtr("aGVsbG8="),
			MIMEType: "image/jpeg",
		}},
	})
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks want 1", len(blocks))
	}
	ref := blocks[0]["image_url"].(map[string]any)
	if ref["url"] != "data:image/jpeg;base64,aGVsbG8=" {
		t.Fatalf("url: got %v", ref["url"])
	}
}

func TestConvertPartsAudioData(t *testing.T) {
	t.Parallel()

	blocks := ConvertParts([]schema.ContentPart{
		{Type: "audio", Media: &schema.MediaReference{
			Base64:   strPtr("UklGRg=="),
			MIMEType: "audio/wav",
		}},
	})
	if len(blocks) != 1 || blocks[0]["type"] != "audio" {
		t.Fatalf("got %v", blocks)
	}
	data := blocks[0]["audio_data"].(map[string]any)
	if data["mime_type"] != "audio/wav" {
		t.Fatalf("mime: got %v", data["mime_type"])
	}
}

func TestConvertPartsUnknownTypeFallsBack(t *testing.T) {
	t.Parallel()

	blocks := ConvertParts([]schema.ContentPart{
		{Type: "custom_kind", Text: strPtr("fallback text")},
		{Type: "custom_kind"},
	})
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks want 1", len(blocks))
	}
	if blocks[0]["text"] != "fallback text" {
		t.Fatalf("got %v", blocks[0])
	}
}
