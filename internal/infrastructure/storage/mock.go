package storage

import "sort"

// MockRepository is an in-memory implementation of Repository for testing.
type MockRepository struct {
	runs    map[string]*ReconciliationRun
	results map[string][]*RunResult
	nextID  int64

	// Hooks for test assertions
	SaveRunCalled     bool
	LastSavedRun      *ReconciliationRun
	SaveResultsCalled bool

	// Error injection for testing error paths
	SaveRunErr     error
	GetRunErr      error
	SaveResultsErr error
	ListRunsErr    error
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

// NewMockRepository creates a new mock repository for testing.
func NewMockRepository() *MockRepository {
	return &MockRepository{
		runs:    make(map[string]*ReconciliationRun),
		results: make(map[string][]*RunResult),
		nextID:  1,
	}
}

func (m *MockRepository) SaveRun(run *ReconciliationRun) error {
	m.SaveRunCalled = true
	if m.SaveRunErr != nil {
		return m.SaveRunErr
	}
	copied := *run
	m.runs[run.ID] = &copied
	m.LastSavedRun = &copied
	return nil
}

func (m *MockRepository) GetRun(id string) (*ReconciliationRun, error) {
	if m.GetRunErr != nil {
		return nil, m.GetRunErr
	}
	run, ok := m.runs[id]
	if !ok {
		return nil, nil
	}
	copied := *run
	return &copied, nil
}

func (m *MockRepository) ListRuns(limit, offset int) ([]*ReconciliationRun, int, error) {
	if m.ListRunsErr != nil {
		return nil, 0, m.ListRunsErr
	}
	if limit <= 0 {
		limit = 50
	}

	all := make([]*ReconciliationRun, 0, len(m.runs))
	for _, run := range m.runs {
		all = append(all, run)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].StartedAt.After(all[j].StartedAt)
	})

	total := len(all)
	if offset >= len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, total, nil
}

func (m *MockRepository) SaveResults(runID string, results []*RunResult) error {
	m.SaveResultsCalled = true
	if m.SaveResultsErr != nil {
		return m.SaveResultsErr
	}
	for _, r := range results {
		copied := *r
		copied.ID = m.nextID
		copied.RunID = runID
		m.nextID++
		m.results[runID] = append(m.results[runID], &copied)
	}
	return nil
}

func (m *MockRepository) GetResults(runID string) ([]*RunResult, error) {
	return m.results[runID], nil
}

func (m *MockRepository) GetStats() (*Stats, error) {
	stats := &Stats{}
	for _, run := range m.runs {
		if run.Status != RunStatusCompleted {
			continue
		}
		stats.TotalRuns++
		stats.TotalTransactions += run.TransactionCount
		stats.TotalMatched += run.MatchedCount
		stats.TotalMissing += run.MissingCount
		stats.TotalExempt += run.ExemptCount
	}
	if stats.TotalTransactions > 0 {
		stats.MatchRate = float64(stats.TotalMatched) / float64(stats.TotalTransactions)
	}
	return stats, nil
}

func (m *MockRepository) Close() error {
	return nil
}
