package recognition

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

const fullMappingJSON = `{
  "59": {
    "symbol_name": "right arrow",
    "latex_candidates": [
      {"command": "\\rightarrow", "math_priority": 0.8, "context": "function mapping"},
      {"command": "\\mapsto", "math_priority": 0.9, "context": "element mapping"},
      {"command": "\\to", "math_priority": 0.7, "context": "shorthand"}
    ]
  },
  "185": {
    "symbol_name": "less than or equal",
    "latex_candidates": [
      {"command": "\\leq", "math_priority": 1.0, "context": "comparison"}
    ]
  }
}`

const indexJSON = `{"idx_to_id": {"0": 59, "1": 185}}`

const simpleJSON = `{
  "idx_to_id": {"0": 59, "1": 185},
  "id_to_latex": {"59": "\\to", "185": "\\leq"}
}`

const tabularCSV = "symbol_id,latex\n185,\\leq\n59,\\rightarrow\n882,\\forall\n"

func TestLoadStoreFullWithIndex(t *testing.T) {
	dir := t.TempDir()
	cfg := MappingConfig{
		FullPath:  writeFile(t, dir, "full.json", fullMappingJSON),
		IndexPath: writeFile(t, dir, "index.json", indexJSON),
	}
	store := LoadStore(cfg, nil)
	if store.Origin() != SourceFull {
		t.Fatalf("origin = %v, want full", store.Origin())
	}
	if store.Degraded() {
		t.Fatal("store unexpectedly degraded")
	}
	if id, ok := store.SymbolForClass(0); !ok || id != 59 {
		t.Fatalf("SymbolForClass(0) = %d,%v, want 59,true", id, ok)
	}
	candidates := store.CandidatesForClass(0)
	if len(candidates) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(candidates))
	}
	// Sorted by priority descending, regardless of file order.
	if candidates[0].Command != `\mapsto` || candidates[1].Command != `\rightarrow` || candidates[2].Command != `\to` {
		t.Fatalf("unexpected candidate order: %+v", candidates)
	}
}

func TestLoadStoreFullBeatsSimple(t *testing.T) {
	dir := t.TempDir()
	cfg := MappingConfig{
		FullPath:   writeFile(t, dir, "full.json", fullMappingJSON),
		IndexPath:  writeFile(t, dir, "index.json", indexJSON),
		SimplePath: writeFile(t, dir, "simple.json", simpleJSON),
	}
	store := LoadStore(cfg, nil)
	if store.Origin() != SourceFull {
		t.Fatalf("origin = %v, want full", store.Origin())
	}
	candidates := store.CandidatesForClass(0)
	// The simple source would offer a single \to at priority 1.0; the full
	// source's curated priorities must win.
	if len(candidates) != 3 || candidates[0].Command != `\mapsto` || candidates[0].Priority != 0.9 {
		t.Fatalf("full-source priorities not honored: %+v", candidates)
	}
}

func TestLoadStoreFullWithoutIndexDegrades(t *testing.T) {
	dir := t.TempDir()
	cfg := MappingConfig{
		FullPath: writeFile(t, dir, "full.json", fullMappingJSON),
	}
	store := LoadStore(cfg, nil)
	if store.Origin() != SourceFull {
		t.Fatalf("origin = %v, want full", store.Origin())
	}
	if !store.Degraded() {
		t.Fatal("expected degraded store without index source")
	}
	if _, ok := store.SymbolForClass(0); ok {
		t.Fatal("class resolution should fail in degraded mode")
	}
	if got := store.CandidatesForSymbol(185); len(got) != 1 || got[0].Command != `\leq` {
		t.Fatalf("symbol lookup should still work, got %+v", got)
	}
}

func TestLoadStoreSimple(t *testing.T) {
	dir := t.TempDir()
	cfg := MappingConfig{
		SimplePath: writeFile(t, dir, "simple.json", simpleJSON),
	}
	store := LoadStore(cfg, nil)
	if store.Origin() != SourceSimple {
		t.Fatalf("origin = %v, want simple", store.Origin())
	}
	candidates := store.CandidatesForClass(1)
	if len(candidates) != 1 || candidates[0].Command != `\leq` || candidates[0].Priority != 1.0 {
		t.Fatalf("unexpected simple candidates: %+v", candidates)
	}
}

func TestLoadStoreTabularSynthesizesIndex(t *testing.T) {
	dir := t.TempDir()
	cfg := MappingConfig{
		TabularPath: writeFile(t, dir, "symbols.csv", tabularCSV),
	}
	store := LoadStore(cfg, nil)
	if store.Origin() != SourceTabular {
		t.Fatalf("origin = %v, want tabular", store.Origin())
	}
	// Indices follow ascending symbol id: 59, 185, 882.
	wantIDs := []int{59, 185, 882}
	for classIndex, wantID := range wantIDs {
		id, ok := store.SymbolForClass(classIndex)
		if !ok || id != wantID {
			t.Fatalf("SymbolForClass(%d) = %d,%v, want %d", classIndex, id, ok, wantID)
		}
	}
	if got := store.CandidatesForClass(2); len(got) != 1 || got[0].Command != `\forall` {
		t.Fatalf("unexpected tabular candidates: %+v", got)
	}
}

func TestLoadStoreFallsBackThroughChain(t *testing.T) {
	dir := t.TempDir()
	cfg := MappingConfig{
		FullPath:    writeFile(t, dir, "full.json", "{not json"),
		SimplePath:  writeFile(t, dir, "simple.json", `{"idx_to_id": {}}`),
		TabularPath: writeFile(t, dir, "symbols.csv", tabularCSV),
	}
	store := LoadStore(cfg, nil)
	if store.Origin() != SourceTabular {
		t.Fatalf("origin = %v, want tabular", store.Origin())
	}
	if store.Err() != nil {
		t.Fatalf("successful tabular load should clear Err, got %v", store.Err())
	}
}

func TestLoadStoreBuiltinFallback(t *testing.T) {
	dir := t.TempDir()
	cfg := MappingConfig{
		FullPath:    writeFile(t, dir, "full.json", "{not json"),
		SimplePath:  filepath.Join(dir, "missing.json"),
		TabularPath: writeFile(t, dir, "symbols.csv", "no,usable\nrows,here\n"),
	}
	store := LoadStore(cfg, nil)
	if store.Origin() != SourceBuiltin {
		t.Fatalf("origin = %v, want builtin", store.Origin())
	}
	if !errors.Is(store.Err(), ErrMappingLoad) {
		t.Fatalf("expected ErrMappingLoad, got %v", store.Err())
	}
	if _, ok := store.SymbolForClass(0); ok {
		t.Fatal("builtin table cannot resolve class indices")
	}
	if got := store.CandidatesForSymbol(1); len(got) == 0 {
		t.Fatal("builtin table should keep candidate lookup non-empty")
	}
}

func TestLoadStoreNoSourcesConfigured(t *testing.T) {
	store := LoadStore(MappingConfig{}, nil)
	if store.Origin() != SourceBuiltin {
		t.Fatalf("origin = %v, want builtin", store.Origin())
	}
	if store.Err() != nil {
		t.Fatalf("no configured sources is not a failure, got %v", store.Err())
	}
}

func TestCandidatesCapped(t *testing.T) {
	dir := t.TempDir()
	cfg := MappingConfig{
		FullPath:      writeFile(t, dir, "full.json", fullMappingJSON),
		IndexPath:     writeFile(t, dir, "index.json", indexJSON),
		MaxCandidates: 2,
	}
	store := LoadStore(cfg, nil)
	if got := store.CandidatesForClass(0); len(got) != 2 {
		t.Fatalf("expected cap of 2, got %d candidates", len(got))
	}
}

func TestCandidatesMissingClassIsEmpty(t *testing.T) {
	dir := t.TempDir()
	cfg := MappingConfig{
		FullPath:  writeFile(t, dir, "full.json", fullMappingJSON),
		IndexPath: writeFile(t, dir, "index.json", indexJSON),
	}
	store := LoadStore(cfg, nil)
	if got := store.CandidatesForClass(12345); len(got) != 0 {
		t.Fatalf("missing class should yield empty list, got %+v", got)
	}
}
