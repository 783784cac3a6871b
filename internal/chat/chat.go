// Package chat frames rendered prompt text and multimodal content parts
// as chat messages. The block format is the common content-list shape
// LLM messaging APIs accept; the core hands these off and owns nothing
// downstream of them.
package chat

import (
	"fmt"

	"github.com/AltairaLabs/promptpack-go/internal/render"
	"github.com/AltairaLabs/promptpack-go/internal/schema"
)

// Block is one typed content block within a message.
type Block map[string]any

// Message is a single chat turn. Content is either a plain string or a
// []Block for multimodal payloads.
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// SystemMessage renders the prompt and frames it as a system turn.
func SystemMessage(r *render.Renderer, values map[string]any) (Message, error) {
	text, err := r.Format(values)
	if err != nil {
		return Message{}, err
	}
	return Message{Role: "system", Content: text}, nil
}

// FromParts builds a message from multimodal content parts. A single
// text part collapses to a plain string payload.
func FromParts(role string, parts []schema.ContentPart) Message {
	blocks := ConvertParts(parts)
	if len(blocks) == 1 && blocks[0]["type"] == "text" {
		if text, ok := blocks[0]["text"].(string); ok {
			return Message{Role: role, Content: text}
		}
	}
	return Message{Role: role, Content: blocks}
}

// ConvertParts translates content parts into message blocks. Parts of an
// unknown type fall back to their text, if any, and are otherwise
// dropped.
func ConvertParts(parts []schema.ContentPart) []Block {
	var blocks []Block
	for _, part := range parts {
		switch {
		case part.Type == "text":
			text := ""
			if part.Text != nil {
				text = *part.Text
			}
			blocks = append(blocks, Block{"type": "text", "text": text})
		case part.Type == "image" && part.Media != nil:
			blocks = append(blocks, imageBlock(part.Media))
		case part.Type == "audio" && part.Media != nil:
			blocks = append(blocks, mediaBlock("audio", part.Media))
		case part.Type == "video" && part.Media != nil:
			blocks = append(blocks, mediaBlock("video", part.Media))
		default:
			if part.Text != nil {
				blocks = append(blocks, Block{"type": "text", "text": *part.Text})
			}
		}
	}
	return blocks
}

func imageBlock(media *schema.MediaReference) Block {
	ref := map[string]any{}
	switch {
	case media.URL != nil:
		ref["url"] = *media.URL
	case media.Base64 != nil:
		ref["url"] = fmt.Sprintf("data:%s;base64,%s", media.MIMEType, *media.Base64)
	case media.FilePath != nil:
		ref["url"] = "file://" + *media.FilePath
	}
	if media.Detail != nil {
		ref["detail"] = *media.Detail
	}
	return Block{"type": "image_url", "image_url": ref}
}

func mediaBlock(kind string, media *schema.MediaReference) Block {
	block := Block{"type": kind}
	switch {
	case media.URL != nil:
		block[kind+"_url"] = map[string]any{"url": *media.URL}
	case media.Base64 != nil:
		block[kind+"_data"] = map[string]any{
			"data":      *media.Base64,
			"mime_type": media.MIMEType,
		}
	case media.FilePath != nil:
		block[kind+"_url"] = map[string]any{"url": "file://" + *media.FilePath}
	}
	return block
}
