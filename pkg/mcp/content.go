// mcpid - MCP service endpoint with MCPI discovery
// License: MIT
//
// Copyright (c) 2026 mcpid contributors

package mcp

import (
	"encoding/json"
	"fmt"
)

// ── content items ──────────────────────────────────────────────────

// Content item kinds, carried in the "type" field on the wire.
const (
	ContentTypeText     = "text"
	ContentTypeImage    = "image"
	ContentTypeAudio    = "audio"
	ContentTypeResource = "resource"
)

// ContentItem is one element of a tool result's content array.
// The Type field selects the variant: text carries Text, image and
// audio carry base64 Data plus MimeType, resource carries Resource.
type ContentItem struct {
	Type        string            `json:"type"`
	Text        string            `json:"text,omitempty"`
	Data        string            `json:"data,omitempty"` // base64 for image/audio
	MimeType    string            `json:"mimeType,omitempty"`
	Resource    *ResourceContents `json:"resource,omitempty"`
	Annotations *Annotations      `json:"annotations,omitempty"`
}

// TextContent builds a text content item.
func TextContent(text string) ContentItem {
	return ContentItem{Type: ContentTypeText, Text: text}
}

// AudioContent builds an audio content item from base64 data.
func AudioContent(data, mimeType string) ContentItem {
	return ContentItem{Type: ContentTypeAudio, Data: data, MimeType: mimeType}
}

// ImageContent builds an image content item from base64 data.
func ImageContent(data, mimeType string) ContentItem {
	return ContentItem{Type: ContentTypeImage, Data: data, MimeType: mimeType}
}

// Annotations attach audience and priority hints to content or resources.
type Annotations struct {
	Audience []string `json:"audience,omitempty"`
	Priority *float64 `json:"priority,omitempty"` // in [0,1]
}

// ── resource contents ──────────────────────────────────────────────

// ResourceContents is the untagged text/blob union returned by
// resources/read. Exactly one of Text and Blob is set; Blob carries
// base64 bytes. The union is distinguished on the wire by which field
// is present, not by a tag.
type ResourceContents struct {
	URI      string  `json:"uri"`
	MimeType string  `json:"mimeType,omitempty"`
	Text     *string `json:"text,omitempty"`
	Blob     *string `json:"blob,omitempty"`
}

// TextResource builds a text resource contents value.
func TextResource(uri, mimeType, text string) ResourceContents {
	return ResourceContents{URI: uri, MimeType: mimeType, Text: &text}
}

// BlobResource builds a blob resource contents value from base64 data.
func BlobResource(uri, mimeType, blob string) ResourceContents {
	return ResourceContents{URI: uri, MimeType: mimeType, Blob: &blob}
}

// UnmarshalJSON enforces the union shape: an object carrying both
// text and blob, or neither, is rejected.
func (rc *ResourceContents) UnmarshalJSON(data []byte) error {
	type plain ResourceContents
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.Text != nil && p.Blob != nil {
		return fmt.Errorf("resource contents %q carries both text and blob", p.URI)
	}
	if p.Text == nil && p.Blob == nil {
		return fmt.Errorf("resource contents %q carries neither text nor blob", p.URI)
	}
	*rc = ResourceContents(p)
	return nil
}
