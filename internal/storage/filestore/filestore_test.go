package filestore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sidereusnuntius/donata/internal/storage"
)

func TestNew_CreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "keys")
	if _, err := New(root); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		t.Fatal(err)
	}
	if !info.IsDir() {
		t.Error("expected a directory")
	}
}

func TestNew_RejectsFile(t *testing.T) {
	root := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(root, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := New(root); !errors.Is(err, storage.ErrNotDir) {
		t.Errorf("expected %s, got %v", storage.ErrNotDir, err)
	}
}

func TestCreate(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		Casename string
		Name     string
		Content  string
		Err      error
	}{
		{"create file", "key.pem", "secret", nil},
		{"create duplicate file", "key.pem", "other", storage.ErrAlreadyExists},
	}

	for _, c := range cases {
		t.Run(c.Casename, func(t *testing.T) {
			err := store.Create(c.Name, []byte(c.Content), 0o600)
			if !errors.Is(err, c.Err) {
				t.Fatalf("unexpected error.\nexpected: %v\ngot: %v\n", c.Err, err)
			}
		})
	}

	content, err := store.Open("key.pem")
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "secret" {
		t.Errorf("expected \"secret\", got %q", content)
	}

	info, err := os.Stat(filepath.Join(store.Root, "key.pem"))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		t.Errorf("key readable by others: %s", perm)
	}
}

func TestOpen_Missing(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err = store.Open("none"); !errors.Is(err, storage.ErrNotExist) {
		t.Errorf("expected %s, got %v", storage.ErrNotExist, err)
	}
}

func TestCreate_StaysInRoot(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err = store.Create("../escape", []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err = os.Stat(filepath.Join(store.Root, "escape")); err != nil {
		t.Errorf("expected the file inside the root: %s", err)
	}
}
