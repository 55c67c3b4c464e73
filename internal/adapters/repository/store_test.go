package repository

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStore_MissingFileIsEmpty(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())

	doc, err := store.Load(ctx, CollectionPicks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Len() != 0 {
		t.Errorf("expected empty document, got %d entries", doc.Len())
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewFileStore(dir)

	for name, content := range map[string]string{
		"garbage":   "{not json",
		"array":     "[1, 2]",
		"blank":     "   ",
		"truncated": `{"a": 1`,
	} {
		t.Run(name, func(t *testing.T) {
			if err := os.WriteFile(store.Path(CollectionEvents), []byte(content), 0o644); err != nil {
				t.Fatalf("write fixture: %v", err)
			}
			_, err := store.Load(ctx, CollectionEvents)
			if !errors.Is(err, ErrCorrupt) {
				t.Errorf("expected ErrCorrupt, got %v", err)
			}
		})
	}
}

func TestFileStore_SaveLoadPreservesOrder(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())

	doc := NewDocument()
	doc.Set("Zurich Classic", json.RawMessage(`9200000`))
	doc.Set("Arnold Palmer", json.RawMessage(`20000000`))
	doc.Set("Masters", json.RawMessage(`21000000`))

	if err := store.Save(ctx, CollectionEvents, doc); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := store.Load(ctx, CollectionEvents)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	var keys []string
	for pair := loaded.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	want := []string{"Zurich Classic", "Arnold Palmer", "Masters"}
	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %v", len(want), keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("key %d: expected %q, got %q", i, want[i], keys[i])
		}
	}
}

func TestFileStore_RoundTripIsByteStable(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())

	doc := NewDocument()
	doc.Set("101", json.RawMessage(`{"name":"Ana","pick":"Scheffler","timestamp":"2025-07-02T20:00:00-04:00"}`))
	doc.Set("202", json.RawMessage(`{"name":"Bo","pick":"McIlroy / Fleetwood","timestamp":"2025-07-02T21:00:00-04:00"}`))
	if err := store.Save(ctx, CollectionPicks, doc); err != nil {
		t.Fatalf("save: %v", err)
	}
	first, err := os.ReadFile(store.Path(CollectionPicks))
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	loaded, err := store.Load(ctx, CollectionPicks)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := store.Save(ctx, CollectionPicks, loaded); err != nil {
		t.Fatalf("resave: %v", err)
	}
	second, err := os.ReadFile(store.Path(CollectionPicks))
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if string(first) != string(second) {
		t.Errorf("document changed across round trip:\n%s\n---\n%s", first, second)
	}
}

func TestFileStore_HandWrittenFileIsByteStable(t *testing.T) {
	ctx := context.Background()

	for name, content := range map[string]string{
		"picks": `{
    "512106151241056257": {
        "name": "Ana",
        "pick": "Scheffler & Fleetwood",
        "timestamp": "2025-07-02 20:00:00 EDT"
    },
    "77": {
        "name": "<Bo>",
        "pick": "McIlroy",
        "timestamp": "2025-07-02 21:00:00 EDT"
    }
}`,
		"events": `{
    "Sony Open": 8300000,
    "AT&T Pebble Beach Pro-Am": 20000000
}`,
	} {
		t.Run(name, func(t *testing.T) {
			store := NewFileStore(t.TempDir())
			if err := os.WriteFile(store.Path(name), []byte(content), 0o644); err != nil {
				t.Fatalf("write fixture: %v", err)
			}
			doc, err := store.Load(ctx, name)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if err := store.Save(ctx, name, doc); err != nil {
				t.Fatalf("save: %v", err)
			}
			data, err := os.ReadFile(store.Path(name))
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if string(data) != content {
				t.Errorf("document changed across round trip:\n%s\n---\n%s", content, data)
			}
		})
	}
}

func TestMarshalValue_KeepsHTMLCharacters(t *testing.T) {
	raw, err := MarshalValue(map[string]string{"pick": "A & B <c>"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got, want := string(raw), `{"pick":"A & B <c>"}`; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestFileStore_EmptyDocument(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())

	if err := store.Save(ctx, CollectionPicks, NewDocument()); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := os.ReadFile(store.Path(CollectionPicks))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "{}" {
		t.Errorf("expected {}, got %q", data)
	}
}

func TestFileStore_FileNames(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir, WithFileName(CollectionPicks, "weekly.json"))

	if got := store.Path(CollectionPicks); got != filepath.Join(dir, "weekly.json") {
		t.Errorf("unexpected picks path %q", got)
	}
	if got := store.Path(CollectionEvents); got != filepath.Join(dir, "events.json") {
		t.Errorf("unexpected events path %q", got)
	}
}

func TestFileStore_SaveFailure(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "missing", "dir"))

	err := store.Save(ctx, CollectionPicks, NewDocument())
	if !errors.Is(err, ErrPersistence) {
		t.Errorf("expected ErrPersistence, got %v", err)
	}
}

func TestFileStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := NewFileStore(t.TempDir())

	if err := store.Save(ctx, CollectionPicks, NewDocument()); !errors.Is(err, ErrPersistence) {
		t.Errorf("expected ErrPersistence, got %v", err)
	}
}
