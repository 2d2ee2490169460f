package finance

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCopyStore(t *testing.T) {
	l, src := newTestLedger(t)
	populate(t, l)

	dst := NewMemoryStore()
	// copying twice upserts the same records.
	for range 2 {
		if err := CopyStore(t.Context(), dst, src); err != nil {
			t.Fatalf("CopyStore() error = %v", err)
		}
	}

	want, got := t.TempDir(), t.TempDir()
	if err := EncodeStore(want, src); err != nil {
		t.Fatal(err)
	}
	if err := EncodeStore(got, dst); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(want)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		w, _ := os.ReadFile(filepath.Join(want, e.Name()))
		g, err := os.ReadFile(filepath.Join(got, e.Name()))
		if err != nil {
			t.Errorf("%s not copied: %v", e.Name(), err)
			continue
		}
		if string(g) != string(w) {
			t.Errorf("%s differs after the copy:\n got: %s\nwant: %s", e.Name(), g, w)
		}
	}
	assertBalances(t, dst)
}

func TestCopyStore_Invalid(t *testing.T) {
	src := NewMemoryStore()
	src.accounts.put("bad", Account{ID: "bad"})
	if err := CopyStore(t.Context(), NewMemoryStore(), src); err == nil {
		t.Error("CopyStore() of an invalid account succeeded, want an error")
	}
}
