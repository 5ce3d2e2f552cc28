package recognition

import (
	"path/filepath"
	"testing"
)

func TestPrefsStoreRecordAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	store, err := OpenPrefsStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok := store.LastChoice(59); ok {
		t.Fatal("fresh store should have no choices")
	}
	if err := store.Record(59, `\rightarrow`); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := store.Record(59, `\to`); err != nil {
		t.Fatalf("record overwrite: %v", err)
	}
	if err := store.Record(185, `\leq`); err != nil {
		t.Fatalf("record second symbol: %v", err)
	}

	reloaded, err := OpenPrefsStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if cmd, ok := reloaded.LastChoice(59); !ok || cmd != `\to` {
		t.Fatalf("LastChoice(59) = %q,%v, want \\to,true", cmd, ok)
	}
	if cmd, ok := reloaded.LastChoice(185); !ok || cmd != `\leq` {
		t.Fatalf("LastChoice(185) = %q,%v, want \\leq,true", cmd, ok)
	}
}

func TestPrefsStoreRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "prefs.json", "not json")
	if _, err := OpenPrefsStore(path); err == nil {
		t.Fatal("expected error for corrupt prefs file")
	}
}
