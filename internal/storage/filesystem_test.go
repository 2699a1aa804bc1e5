package storage

import (
	"context"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	key, err := store.Write(context.Background(), "generated/images/batch-1/a.png", []byte("bytes"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if key != "generated/images/batch-1/a.png" {
		t.Errorf("unexpected key %q", key)
	}

	data, err := store.Read(context.Background(), key)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != "bytes" {
		t.Errorf("unexpected contents %q", data)
	}
}

func TestSanitizeKeyRejectsTraversal(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if _, err := store.Write(context.Background(), "../escape.txt", []byte("x")); err == nil {
		t.Fatal("expected traversal to be rejected")
	}
	if _, err := store.Read(context.Background(), ""); err == nil {
		t.Fatal("expected empty key to be rejected")
	}
}
