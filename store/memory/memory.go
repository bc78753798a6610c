// Package memory provides in-memory store implementations (for testing/dev).
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/warp/timetracker/model"
	"github.com/warp/timetracker/stats"
)

// =============================================================================
// MEMORY STORE - implements all store interfaces
// =============================================================================

// Store keeps documents, entries, and absences in maps guarded by one mutex.
// Documents are deep-copied on both read and write so callers never alias
// stored state.
type Store struct {
	mu        sync.RWMutex
	documents map[string]versionedDocument
	entries   map[string]*model.LogEntry
	absences  map[string]*model.Absence
}

type versionedDocument struct {
	doc *stats.YearDocument
	rev stats.Revision
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		documents: make(map[string]versionedDocument),
		entries:   make(map[string]*model.LogEntry),
		absences:  make(map[string]*model.Absence),
	}
}

// =============================================================================
// DOCUMENT STORE (stats.DocumentStore)
// =============================================================================

func (s *Store) Get(_ context.Context, key string) (*stats.YearDocument, stats.Revision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.documents[key]
	if !ok {
		return nil, 0, stats.ErrNotFound
	}
	return stored.doc.Clone(), stored.rev, nil
}

func (s *Store) Create(_ context.Context, doc *stats.YearDocument) (stats.Revision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.documents[doc.ID]; exists {
		return 0, stats.ErrConflict
	}
	s.documents[doc.ID] = versionedDocument{doc: doc.Clone(), rev: 1}
	return 1, nil
}

func (s *Store) Replace(_ context.Context, doc *stats.YearDocument, rev stats.Revision) (stats.Revision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.documents[doc.ID]
	if !ok || stored.rev != rev {
		return 0, stats.ErrConflict
	}
	next := stored.rev + 1
	s.documents[doc.ID] = versionedDocument{doc: doc.Clone(), rev: next}
	return next, nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[key]; !ok {
		return stats.ErrNotFound
	}
	delete(s.documents, key)
	return nil
}

// =============================================================================
// ENTRY STORE (tracker.EntryStore)
// =============================================================================

func (s *Store) CreateEntry(_ context.Context, entry *model.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[entry.ID]; exists {
		return stats.ErrConflict
	}
	stored := *entry
	s.entries[entry.ID] = &stored
	return nil
}

func (s *Store) GetEntry(_ context.Context, id string) (*model.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[id]
	if !ok {
		return nil, stats.ErrNotFound
	}
	result := *entry
	return &result, nil
}

func (s *Store) ReplaceEntry(_ context.Context, entry *model.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[entry.ID]; !ok {
		return stats.ErrNotFound
	}
	stored := *entry
	s.entries[entry.ID] = &stored
	return nil
}

func (s *Store) DeleteEntry(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return stats.ErrNotFound
	}
	delete(s.entries, id)
	return nil
}

func (s *Store) EntriesByDate(_ context.Context, date string) ([]*model.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectEntries(func(e *model.LogEntry) bool { return e.Date == date }), nil
}

func (s *Store) EntriesByYear(_ context.Context, year int) ([]*model.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectEntries(func(e *model.LogEntry) bool { return e.Year == year }), nil
}

func (s *Store) FindEntries(_ context.Context, year int, project, query string) ([]*model.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query = strings.ToLower(query)
	return s.collectEntries(func(e *model.LogEntry) bool {
		if e.Year != year {
			return false
		}
		if project != "" && strings.TrimSpace(e.Project) != project {
			return false
		}
		if query != "" && !strings.Contains(strings.ToLower(e.Description), query) {
			return false
		}
		return true
	}), nil
}

func (s *Store) collectEntries(match func(*model.LogEntry) bool) []*model.LogEntry {
	var result []*model.LogEntry
	for _, entry := range s.entries {
		if match(entry) {
			copied := *entry
			result = append(result, &copied)
		}
	}
	// Deterministic order for callers and tests.
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date < result[j].Date
		}
		return result[i].Start < result[j].Start
	})
	return result
}

// =============================================================================
// ABSENCE STORE (tracker.AbsenceStore)
// =============================================================================

func (s *Store) UpsertAbsence(_ context.Context, absence *model.Absence) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *absence
	s.absences[absence.ID] = &stored
	return nil
}

func (s *Store) AbsencesByYear(_ context.Context, year int) ([]*model.Absence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*model.Absence
	for _, absence := range s.absences {
		if absence.Year == year {
			copied := *absence
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	return result, nil
}
