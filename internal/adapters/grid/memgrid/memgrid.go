// Package memgrid is an in-memory Grid used by tests and by local
// development without a workbook or database.
package memgrid

import (
	"context"
	"sort"
	"sync"

	"github.com/Marshallsbest/OrderSystem/internal/domain"
)

type Store struct {
	mu     sync.RWMutex
	sheets map[string][][]string
}

func New() *Store {
	return &Store{sheets: map[string][][]string{}}
}

// Seed replaces a sheet's contents wholesale. Test setup only.
func (s *Store) Seed(sheet string, rows [][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([][]string, len(rows))
	for i, r := range rows {
		cp[i] = append([]string(nil), r...)
	}
	s.sheets[sheet] = cp
}

func (s *Store) Rows(_ context.Context, sheet string) ([][]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.sheets[sheet]
	cp := make([][]string, len(rows))
	for i, r := range rows {
		cp[i] = append([]string(nil), r...)
	}
	return cp, nil
}

func (s *Store) AppendRow(_ context.Context, sheet string, row []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sheets[sheet] = append(s.sheets[sheet], append([]string(nil), row...))
	return nil
}

func (s *Store) AppendRows(_ context.Context, sheet string, rows [][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.sheets[sheet] = append(s.sheets[sheet], append([]string(nil), r...))
	}
	return nil
}

func (s *Store) SetRow(_ context.Context, sheet string, index int, row []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.sheets[sheet]
	for len(rows) <= index {
		rows = append(rows, []string{})
	}
	rows[index] = append([]string(nil), row...)
	s.sheets[sheet] = rows
	return nil
}

func (s *Store) DeleteRows(_ context.Context, sheet string, indices []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.sheets[sheet]
	sorted := append([]int(nil), indices...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	for _, idx := range sorted {
		if idx < 0 || idx >= len(rows) {
			continue
		}
		rows = append(rows[:idx], rows[idx+1:]...)
	}
	s.sheets[sheet] = rows
	return nil
}

var _ domain.Grid = (*Store)(nil)
