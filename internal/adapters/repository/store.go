// Package repository persists the bot's keyed collections as JSON documents.
package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Collection names used by the bot.
const (
	CollectionPicks  = "picks"
	CollectionEvents = "events"
)

// Document is one collection: a JSON object whose key order is preserved.
type Document = orderedmap.OrderedMap[string, json.RawMessage]

// NewDocument returns an empty document.
func NewDocument() *Document {
	return orderedmap.New[string, json.RawMessage]()
}

// Store loads and saves whole collections. There are no partial updates:
// Save replaces everything previously stored under the collection.
type Store interface {
	// Load returns the stored document, or an empty one when nothing was
	// ever saved. A document that cannot be parsed yields ErrCorrupt.
	Load(ctx context.Context, collection string) (*Document, error)

	// Save overwrites the collection. Failures wrap ErrPersistence.
	Save(ctx context.Context, collection string, doc *Document) error

	// Close releases backend resources.
	Close() error
}

const indent = "    "

// encode renders doc the way every backend stores it: a 4-space indented
// JSON object in document order. Values are written as stored, so text such
// as "AT&T" is never rewritten to \u0026.
func encode(doc *Document) ([]byte, error) {
	if doc == nil {
		doc = NewDocument()
	}
	var flat bytes.Buffer
	flat.WriteByte('{')
	for pair := doc.Oldest(); pair != nil; pair = pair.Next() {
		if pair != doc.Oldest() {
			flat.WriteByte(',')
		}
		key, err := MarshalValue(pair.Key)
		if err != nil {
			return nil, fmt.Errorf("encode document: key %q: %w", pair.Key, err)
		}
		flat.Write(key)
		flat.WriteByte(':')
		if err := json.Compact(&flat, pair.Value); err != nil {
			return nil, fmt.Errorf("encode document: %s: %w", pair.Key, err)
		}
	}
	flat.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, flat.Bytes(), "", indent); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return out.Bytes(), nil
}

// MarshalValue encodes v for a Document without HTML escaping.
func MarshalValue(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func decode(collection string, data []byte) (*Document, error) {
	doc := NewDocument()
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: %s: not a JSON object", ErrCorrupt, collection)
	}
	if err := json.Unmarshal(trimmed, doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, collection, err)
	}
	return doc, nil
}
