package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewLocalStoreCreatesKindDirs(t *testing.T) {
	root := t.TempDir()
	if _, err := NewLocalStore(root); err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	for _, kind := range []string{KindVideo, KindAttachment} {
		info, err := os.Stat(filepath.Join(root, kind))
		if err != nil {
			t.Fatalf("stat %s dir: %v", kind, err)
		}
		if !info.IsDir() {
			t.Fatalf("%s is not a directory", kind)
		}
	}
}

func TestNewLocalStoreRequiresRoot(t *testing.T) {
	if _, err := NewLocalStore(""); err == nil {
		t.Fatal("expected an error for empty root")
	}
}

func TestSaveAndRemove(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	content := []byte("lecture one")
	hash := ContentHash(content)

	path, existed, err := store.Save(KindVideo, hash, content)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if existed {
		t.Fatal("fresh write reported as existing")
	}
	if path != store.Path(KindVideo, hash) {
		t.Fatalf("Save path = %q, want %q", path, store.Path(KindVideo, hash))
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != string(content) {
		t.Fatalf("stored content = %q, want %q", got, content)
	}

	if err := store.Remove(KindVideo, hash); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("file still present after Remove")
	}
}

func TestSaveSameContentTwice(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	content := []byte("duplicate upload")
	hash := ContentHash(content)

	if _, existed, err := store.Save(KindAttachment, hash, content); err != nil || existed {
		t.Fatalf("first Save: existed=%v err=%v", existed, err)
	}
	if _, existed, err := store.Save(KindAttachment, hash, content); err != nil || !existed {
		t.Fatalf("second Save: existed=%v err=%v", existed, err)
	}
}

func TestRemoveMissingFile(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	if err := store.Remove(KindVideo, ContentHash([]byte("never stored"))); err != nil {
		t.Fatalf("Remove of a missing file: %v", err)
	}
}

func TestContentHash(t *testing.T) {
	hash := ContentHash([]byte("abc"))
	if len(hash) != 128 {
		t.Fatalf("hash length = %d, want 128", len(hash))
	}
	if hash == ContentHash([]byte("abd")) {
		t.Fatal("different content produced the same hash")
	}
	if hash != ContentHash([]byte("abc")) {
		t.Fatal("same content produced different hashes")
	}
}
