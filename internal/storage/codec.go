package storage

import (
	"bytes"
	"encoding/json"
	"fmt"

	"pagebuilder/internal/domain"
)

// wireBlock is the persisted shape of a block. Older rows store children
// as a JSON-encoded string instead of an array, and content may be any
// JSON value.
type wireBlock struct {
	ID       string           `json:"id"`
	Type     domain.BlockType `json:"type"`
	Content  json.RawMessage  `json:"content,omitempty"`
	Props    map[string]any   `json:"props,omitempty"`
	Variants map[string]any   `json:"variants,omitempty"`
	Styles   map[string]any   `json:"styles,omitempty"`
	Children json.RawMessage  `json:"children,omitempty"`
}

// EncodeTree serializes a tree for storage.
func EncodeTree(t domain.Tree) ([]byte, error) {
	if t == nil {
		t = domain.Tree{}
	}
	return json.Marshal(t)
}

// DecodeTree parses a persisted tree. The top level may itself be a
// JSON-encoded string. Nested children that cannot be parsed are replaced
// with an empty sequence; only a malformed top level is an error.
func DecodeTree(data []byte) (domain.Tree, error) {
	raw, err := unwrapString(bytes.TrimSpace(data))
	if err != nil {
		return nil, fmt.Errorf("decode tree: %w", err)
	}
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return domain.Tree{}, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode tree: %w", err)
	}
	t := make(domain.Tree, 0, len(items))
	for i, item := range items {
		b, err := decodeBlock(item)
		if err != nil {
			return nil, fmt.Errorf("decode tree: block %d: %w", i, err)
		}
		t = append(t, b)
	}
	return t, nil
}

// DecodeBlock parses a single persisted block with the same leniency as
// DecodeTree.
func DecodeBlock(data []byte) (domain.Block, error) {
	raw, err := unwrapString(bytes.TrimSpace(data))
	if err != nil {
		return domain.Block{}, fmt.Errorf("decode block: %w", err)
	}
	b, err := decodeBlock(raw)
	if err != nil {
		return domain.Block{}, fmt.Errorf("decode block: %w", err)
	}
	return b, nil
}

func decodeBlock(raw json.RawMessage) (domain.Block, error) {
	var w wireBlock
	if err := json.Unmarshal(raw, &w); err != nil {
		return domain.Block{}, err
	}
	return domain.Block{
		ID:       w.ID,
		Type:     w.Type,
		Content:  decodeContent(w.Content),
		Props:    w.Props,
		Variants: w.Variants,
		Styles:   w.Styles,
		Children: decodeChildren(w.Children),
	}, nil
}

func decodeContent(raw json.RawMessage) string {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	// Rich content is kept verbatim.
	return string(raw)
}

func decodeChildren(raw json.RawMessage) []domain.Block {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	unwrapped, err := unwrapString(raw)
	if err != nil {
		return []domain.Block{}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(unwrapped, &items); err != nil {
		return []domain.Block{}
	}
	out := make([]domain.Block, 0, len(items))
	for _, item := range items {
		b, err := decodeBlock(item)
		if err != nil {
			return []domain.Block{}
		}
		out = append(out, b)
	}
	return out
}

// unwrapString peels JSON string layers until raw is no longer a string.
func unwrapString(raw []byte) ([]byte, error) {
	for len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		raw = bytes.TrimSpace([]byte(s))
	}
	return raw, nil
}
