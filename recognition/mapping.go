package recognition

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// Source identifies which mapping source the store was built from.
type Source int

const (
	// SourceBuiltin is the compiled-in table; it carries candidates but no
	// class index associations.
	SourceBuiltin Source = iota
	// SourceTabular is the two-column (symbol_id, latex) CSV with class
	// indices synthesized from ascending symbol ids.
	SourceTabular
	// SourceSimple is the index JSON alone: idx_to_id plus id_to_latex.
	SourceSimple
	// SourceFull is the curated JSON with per-candidate priorities, merged
	// with the separate index JSON for class resolution.
	SourceFull
)

func (s Source) String() string {
	switch s {
	case SourceFull:
		return "full"
	case SourceSimple:
		return "simple"
	case SourceTabular:
		return "tabular"
	default:
		return "builtin"
	}
}

// Store is the immutable symbol mapping table: class index to symbol id, and
// symbol id to priority-ordered LaTeX candidates. Built once at startup,
// read-only afterwards, safe for concurrent use.
type Store struct {
	source        Source
	classToSymbol map[int]int
	candidates    map[int][]Candidate
	maxCandidates int
	degraded      bool
	loadErr       error
}

// LoadStore builds a store by trying the configured sources in priority
// order: full+index, simple, tabular, built-in. A later source is only
// consulted when every earlier one is absent or unparsable. When all
// external sources fail the built-in table is used and Err reports the
// accumulated failures; the load itself never aborts.
func LoadStore(cfg MappingConfig, logger *log.Logger) *Store {
	full := Config{Mapping: cfg}
	full.ApplyDefaults()
	cfg = full.Mapping

	s := &Store{
		source:        SourceBuiltin,
		classToSymbol: map[int]int{},
		maxCandidates: cfg.MaxCandidates,
	}

	var failures []error
	tried := false

	if cfg.FullPath != "" {
		tried = true
		candidates, err := parseFullMapping(cfg.FullPath)
		if err != nil {
			failures = append(failures, err)
		} else {
			s.source = SourceFull
			s.candidates = candidates
			// Class resolution lives in a separate index file. Its
			// absence is a degraded mode, not a failure: candidates
			// still resolve by symbol id.
			if cfg.IndexPath == "" {
				s.degraded = true
			} else if idx, _, err := parseIndexMapping(cfg.IndexPath); err != nil {
				s.degraded = true
				logf(logger, "mapping: index source unusable, class resolution degraded: %v", err)
			} else {
				s.classToSymbol = idx
			}
			s.finish(logger)
			return s
		}
	}

	if cfg.SimplePath != "" {
		tried = true
		idx, commands, err := parseIndexMapping(cfg.SimplePath)
		switch {
		case err != nil:
			failures = append(failures, err)
		case len(commands) == 0:
			failures = append(failures, fmt.Errorf("%s: no id_to_latex entries", filepath.Base(cfg.SimplePath)))
		default:
			s.source = SourceSimple
			s.classToSymbol = idx
			s.candidates = make(map[int][]Candidate, len(commands))
			for id, cmd := range commands {
				s.candidates[id] = []Candidate{{Command: cmd, Priority: 1.0}}
			}
			s.finish(logger)
			return s
		}
	}

	if cfg.TabularPath != "" {
		tried = true
		candidates, err := parseTabularMapping(cfg.TabularPath)
		if err != nil {
			failures = append(failures, err)
		} else {
			s.source = SourceTabular
			s.candidates = candidates
			s.classToSymbol = synthesizeIndex(candidates)
			s.finish(logger)
			return s
		}
	}

	s.candidates = builtinMappings()
	if tried {
		failures = append(failures, ErrMappingLoad)
		s.loadErr = errors.Join(failures...)
		logf(logger, "mapping: falling back to built-in table: %v", s.loadErr)
	}
	s.finish(logger)
	return s
}

func (s *Store) finish(logger *log.Logger) {
	for id := range s.candidates {
		sort.SliceStable(s.candidates[id], func(i, j int) bool {
			return s.candidates[id][i].Priority > s.candidates[id][j].Priority
		})
	}
	logf(logger, "mapping: loaded %d symbols from %s source (classes=%d)",
		len(s.candidates), s.source, len(s.classToSymbol))
}

// Origin reports which source the store was built from.
func (s *Store) Origin() Source { return s.source }

// Degraded reports that candidate data loaded but class resolution did not.
func (s *Store) Degraded() bool { return s.degraded }

// Err returns the accumulated load failures when every external source was
// rejected, wrapping ErrMappingLoad. Nil on any successful external load.
func (s *Store) Err() error { return s.loadErr }

// ClassCount returns how many class indices the store can resolve.
func (s *Store) ClassCount() int { return len(s.classToSymbol) }

// SymbolForClass resolves a classifier output index to a stable symbol id.
func (s *Store) SymbolForClass(classIndex int) (int, bool) {
	id, ok := s.classToSymbol[classIndex]
	return id, ok
}

// CandidatesForSymbol returns the priority-ordered candidates for a symbol
// id, capped at the configured maximum. Missing symbols yield an empty list.
func (s *Store) CandidatesForSymbol(symbolID int) []Candidate {
	list := s.candidates[symbolID]
	if len(list) > s.maxCandidates {
		list = list[:s.maxCandidates]
	}
	out := make([]Candidate, len(list))
	copy(out, list)
	return out
}

// CandidatesForClass resolves the class index and returns that symbol's
// candidates. Unresolvable indices fall back to a direct symbol-id lookup so
// the built-in table stays reachable without an index source.
func (s *Store) CandidatesForClass(classIndex int) []Candidate {
	if id, ok := s.classToSymbol[classIndex]; ok {
		return s.CandidatesForSymbol(id)
	}
	return s.CandidatesForSymbol(classIndex)
}

// fullMappingEntry mirrors the curated JSON: one symbol with its ordered
// candidate list.
type fullMappingEntry struct {
	SymbolName      string      `json:"symbol_name"`
	LatexCandidates []Candidate `json:"latex_candidates"`
}

func parseFullMapping(path string) (map[int][]Candidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read full mapping: %w", err)
	}
	var raw map[string]fullMappingEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode full mapping: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("full mapping %s is empty", filepath.Base(path))
	}
	out := make(map[int][]Candidate, len(raw))
	for key, entry := range raw {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("full mapping key %q: %w", key, err)
		}
		list := make([]Candidate, 0, len(entry.LatexCandidates))
		for _, cand := range entry.LatexCandidates {
			cand.Command = NormalizeCommand(cand.Command)
			if cand.Command == "" {
				continue
			}
			list = append(list, cand)
		}
		if len(list) > 0 {
			out[id] = list
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("full mapping %s has no usable candidates", filepath.Base(path))
	}
	return out, nil
}

// indexMapping mirrors the index JSON: class index to symbol id, plus an
// optional symbol id to command table.
type indexMapping struct {
	IdxToID   map[string]int    `json:"idx_to_id"`
	IDToLatex map[string]string `json:"id_to_latex"`
}

func parseIndexMapping(path string) (map[int]int, map[int]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read index mapping: %w", err)
	}
	var raw indexMapping
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("decode index mapping: %w", err)
	}
	if len(raw.IdxToID) == 0 {
		return nil, nil, fmt.Errorf("index mapping %s has no idx_to_id entries", filepath.Base(path))
	}
	idx := make(map[int]int, len(raw.IdxToID))
	for key, id := range raw.IdxToID {
		classIndex, err := strconv.Atoi(key)
		if err != nil {
			return nil, nil, fmt.Errorf("index mapping key %q: %w", key, err)
		}
		idx[classIndex] = id
	}
	commands := make(map[int]string, len(raw.IDToLatex))
	for key, cmd := range raw.IDToLatex {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, nil, fmt.Errorf("index mapping id %q: %w", key, err)
		}
		cmd = NormalizeCommand(cmd)
		if cmd != "" {
			commands[id] = cmd
		}
	}
	return idx, commands, nil
}

func parseTabularMapping(path string) (map[int][]Candidate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tabular mapping: %w", err)
	}
	defer f.Close()
	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read tabular mapping: %w", err)
	}
	out := make(map[int][]Candidate)
	for i, row := range rows {
		if len(row) < 2 {
			continue
		}
		id, err := strconv.Atoi(NormalizeCommand(row[0]))
		if err != nil {
			if i == 0 {
				// Header row.
				continue
			}
			return nil, fmt.Errorf("tabular mapping row %d id %q: %w", i+1, row[0], err)
		}
		cmd := NormalizeCommand(row[1])
		if cmd == "" {
			continue
		}
		out[id] = []Candidate{{Command: cmd, Priority: 1.0}}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("tabular mapping %s has no usable rows", filepath.Base(path))
	}
	return out, nil
}

// synthesizeIndex assigns sequential class indices to symbol ids in
// ascending order, for sources that carry no index of their own.
func synthesizeIndex(candidates map[int][]Candidate) map[int]int {
	ids := make([]int, 0, len(candidates))
	for id := range candidates {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	idx := make(map[int]int, len(ids))
	for i, id := range ids {
		idx[i] = id
	}
	return idx
}

func logf(logger *log.Logger, format string, args ...any) {
	if logger != nil {
		logger.Printf(format, args...)
	}
}
