package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/codingclub/hackportal/internal/config"
)

func TestLocalStore_SaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(&config.StorageConfig{Dir: dir, BaseURL: "/uploads/"})
	if err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}

	key := NewBlobKey("report.pdf")
	url, err := store.Save(key, strings.NewReader("content"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if url != "/uploads/"+key {
		t.Errorf("URL = %q, expected /uploads/%s", url, key)
	}

	data, err := os.ReadFile(filepath.Join(dir, key))
	if err != nil {
		t.Fatalf("stored blob unreadable: %v", err)
	}
	if string(data) != "content" {
		t.Errorf("stored content = %q, expected %q", data, "content")
	}

	if err := store.Delete(key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, key)); !os.IsNotExist(err) {
		t.Error("blob still exists after delete")
	}

	// deleting a missing key is not an error
	if err := store.Delete(key); err != nil {
		t.Errorf("deleting a missing key should be a no-op, got %v", err)
	}
}

func TestLocalStore_RejectsTraversal(t *testing.T) {
	store, err := NewLocalStore(&config.StorageConfig{Dir: t.TempDir(), BaseURL: "/uploads"})
	if err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}

	for _, key := range []string{"", "../escape", "a/b", "..", "x/../../etc"} {
		if _, err := store.Save(key, strings.NewReader("x")); err == nil {
			t.Errorf("Save(%q) should be rejected", key)
		}
	}
}

func TestNewBlobKey_PreservesExtension(t *testing.T) {
	key := NewBlobKey("Slides.PDF")
	if !strings.HasSuffix(key, ".pdf") {
		t.Errorf("key = %q, expected lowercase .pdf suffix", key)
	}

	other := NewBlobKey("Slides.PDF")
	if key == other {
		t.Error("keys should be unique per call")
	}
}
