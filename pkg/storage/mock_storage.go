package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/ignatij/trialtasks/pkg/models"
	"github.com/pkg/errors"
)

// mockData holds rows, either committed or staged by one transaction
type mockData struct {
	lookups map[models.LookupKind][]models.Lookup
	tasks   []models.Task
}

func newMockData() *mockData {
	return &mockData{lookups: make(map[models.LookupKind][]models.Lookup)}
}

// merge appends the rows of other, keeping d's rows first.
func (d *mockData) merge(other *mockData) *mockData {
	c := newMockData()
	for _, src := range []*mockData{d, other} {
		for k, rows := range src.lookups {
			c.lookups[k] = append(c.lookups[k], rows...)
		}
		c.tasks = append(c.tasks, src.tasks...)
	}
	return c
}

// mockDB is the state shared by a root store and its transactions. Like
// Postgres sequences, the id counters are not transactional.
type mockDB struct {
	committed    *mockData
	nextLookupID map[models.LookupKind]int64
	nextTaskID   int64
}

// mockStore implements storage.Store in memory with read-committed
// semantics: a transaction sees committed rows plus its own staged rows.
// Commit re-checks the task number against rows committed meanwhile.
type mockStore struct {
	mu     *sync.Mutex
	db     *mockDB
	staged *mockData // nil outside a transaction
	done   bool      // Transaction state
	now    func() time.Time
}

// NewMockStore returns an empty in-memory Store using the wall clock.
func NewMockStore() Store {
	return NewMockStoreWithClock(time.Now)
}

// NewMockStoreWithClock returns an empty in-memory Store stamping rows with
// now().
func NewMockStoreWithClock(now func() time.Time) Store {
	return &mockStore{
		mu: &sync.Mutex{},
		db: &mockDB{
			committed:    newMockData(),
			nextLookupID: make(map[models.LookupKind]int64),
		},
		now: now,
	}
}

// view returns the rows visible to m. Callers hold mu.
func (m *mockStore) view() (*mockData, error) {
	if m.staged == nil {
		return m.db.committed, nil
	}
	if m.done {
		return nil, errors.New("transaction already finished")
	}
	return m.db.committed.merge(m.staged), nil
}

// target returns where new rows go. Callers hold mu.
func (m *mockStore) target() *mockData {
	if m.staged != nil {
		return m.staged
	}
	return m.db.committed
}

func (m *mockStore) Begin(_ context.Context) (Store, error) {
	if m.staged != nil {
		return nil, errors.New("cannot begin transaction inside a transaction")
	}
	return &mockStore{
		mu:     m.mu,
		db:     m.db,
		staged: newMockData(),
		now:    m.now,
	}, nil
}

func (m *mockStore) Commit() error {
	if m.staged == nil {
		return errors.New("cannot commit: not a transaction")
	}
	if m.done {
		return errors.New("already committed")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.done = true
	for _, t := range m.staged.tasks {
		if numberTaken(m.db.committed, t.Number) {
			return errors.Wrapf(ErrDuplicateNumber, "commit task %q", t.Number)
		}
	}
	m.db.committed = m.db.committed.merge(m.staged)
	return nil
}

func (m *mockStore) Rollback() error {
	if m.staged == nil {
		return errors.New("cannot rollback: not a transaction")
	}
	if m.done {
		return errors.New("cannot rollback finished transaction")
	}
	m.done = true
	return nil
}

func (m *mockStore) Close() error {
	return nil
}

func (m *mockStore) Ping(_ context.Context) error {
	return nil
}

func (m *mockStore) Lookups(kind models.LookupKind) LookupRepository {
	return &mockLookupRepository{store: m, kind: kind}
}

func (m *mockStore) Tasks() TaskRepository {
	return &mockTaskRepository{store: m}
}

type mockLookupRepository struct {
	store *mockStore
	kind  models.LookupKind
}

func (r *mockLookupRepository) Create(_ context.Context, name string) (int64, error) {
	if tooLong(name, MaxLookupNameLen) {
		return 0, errors.Wrapf(ErrValueTooLong, "save %s", r.kind)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, err := r.store.view(); err != nil {
		return 0, err
	}
	r.store.db.nextLookupID[r.kind]++
	now := r.store.now()
	n := name
	row := models.Lookup{ID: r.store.db.nextLookupID[r.kind], Kind: r.kind, Name: &n, CreatedAt: now, UpdatedAt: now}
	d := r.store.target()
	d.lookups[r.kind] = append(d.lookups[r.kind], row)
	return row.ID, nil
}

func (r *mockLookupRepository) Get(_ context.Context, id int64) (models.Lookup, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	d, err := r.store.view()
	if err != nil {
		return models.Lookup{}, err
	}
	for _, row := range d.lookups[r.kind] {
		if row.ID == id {
			return row, nil
		}
	}
	return models.Lookup{}, ErrNotFound
}

func (r *mockLookupRepository) List(_ context.Context, name string, page models.Page) ([]models.Lookup, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	d, err := r.store.view()
	if err != nil {
		return nil, err
	}
	var matched []models.Lookup
	for _, row := range d.lookups[r.kind] {
		if name == "" || row.NameOrEmpty() == name {
			matched = append(matched, row)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return window(matched, page), nil
}

func (r *mockLookupRepository) Count(_ context.Context) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	d, err := r.store.view()
	if err != nil {
		return 0, err
	}
	return len(d.lookups[r.kind]), nil
}

type mockTaskRepository struct {
	store *mockStore
}

func (r *mockTaskRepository) Create(_ context.Context, t models.Task) (int64, error) {
	if tooLong(t.Number, MaxNumberLen) || tooLong(t.Title, MaxTitleLen) ||
		tooLong(t.Duration, MaxDurationLen) || tooLong(t.NumberOfTarget, MaxTargetLen) {
		return 0, errors.Wrap(ErrValueTooLong, "save task")
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	d, err := r.store.view()
	if err != nil {
		return 0, err
	}
	if numberTaken(d, t.Number) {
		return 0, errors.Wrapf(ErrDuplicateNumber, "save task %q", t.Number)
	}
	for _, kind := range models.LookupKinds {
		id := t.LookupID(kind)
		if id != nil && !hasLookup(d, kind, *id) {
			return 0, errors.Errorf("save task: %s row %d does not exist", kind, *id)
		}
	}
	r.store.db.nextTaskID++
	t.ID = r.store.db.nextTaskID
	now := r.store.now()
	t.CreatedAt = now
	t.UpdatedAt = now
	target := r.store.target()
	target.tasks = append(target.tasks, t)
	return t.ID, nil
}

func (r *mockTaskRepository) Get(_ context.Context, id int64) (models.TaskRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	d, err := r.store.view()
	if err != nil {
		return models.TaskRecord{}, err
	}
	for _, t := range d.tasks {
		if t.ID == id {
			return resolve(d, t), nil
		}
	}
	return models.TaskRecord{}, ErrNotFound
}

func (r *mockTaskRepository) Search(_ context.Context, f models.TaskFilter) ([]models.TaskRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	d, err := r.store.view()
	if err != nil {
		return nil, err
	}
	var matched []models.TaskRecord
	for _, t := range d.tasks {
		rec := resolve(d, t)
		if matches(rec, f) {
			matched = append(matched, rec)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].UpdatedAt.Equal(matched[j].UpdatedAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].UpdatedAt.Before(matched[j].UpdatedAt)
	})
	return window(matched, f.Page), nil
}

func (r *mockTaskRepository) ListUpdatedWithin(_ context.Context, span time.Duration, page models.Page) ([]models.TaskRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	d, err := r.store.view()
	if err != nil {
		return nil, err
	}
	to := r.store.now()
	from := to.Add(-span)
	var matched []models.TaskRecord
	for _, t := range d.tasks {
		if t.UpdatedAt.Before(from) || t.UpdatedAt.After(to) {
			continue
		}
		matched = append(matched, resolve(d, t))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return window(matched, page), nil
}

func (r *mockTaskRepository) Count(_ context.Context) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	d, err := r.store.view()
	if err != nil {
		return 0, err
	}
	return len(d.tasks), nil
}

// tooLong counts characters, as VARCHAR(n) does.
func tooLong(s string, limit int) bool {
	return utf8.RuneCountInString(s) > limit
}

func numberTaken(d *mockData, number string) bool {
	for _, t := range d.tasks {
		if t.Number == number {
			return true
		}
	}
	return false
}

func hasLookup(d *mockData, kind models.LookupKind, id int64) bool {
	for _, row := range d.lookups[kind] {
		if row.ID == id {
			return true
		}
	}
	return false
}

func lookupName(d *mockData, kind models.LookupKind, id *int64) string {
	if id == nil {
		return ""
	}
	for _, row := range d.lookups[kind] {
		if row.ID == *id {
			return row.NameOrEmpty()
		}
	}
	return ""
}

func resolve(d *mockData, t models.Task) models.TaskRecord {
	return models.TaskRecord{
		Task:       t,
		Department: lookupName(d, models.DepartmentLookup, t.DepartmentID),
		Institute:  lookupName(d, models.InstituteLookup, t.InstituteID),
		Scope:      lookupName(d, models.ScopeLookup, t.ScopeID),
		TrialStage: lookupName(d, models.TrialStageLookup, t.TrialStageID),
		Type:       lookupName(d, models.TypeLookup, t.TypeID),
	}
}

// matches mirrors the SQL predicates built by the Postgres repository.
func matches(rec models.TaskRecord, f models.TaskFilter) bool {
	if f.Title != "" && !strings.Contains(strings.ToLower(rec.Title), strings.ToLower(f.Title)) {
		return false
	}
	if f.Department != "" && !strings.EqualFold(rec.Department, f.Department) {
		return false
	}
	if f.Institute != "" && !strings.Contains(rec.Institute, f.Institute) {
		return false
	}
	if f.Type != "" && rec.Type != f.Type {
		return false
	}
	if f.TrialStage != "" && !strings.EqualFold(rec.TrialStage, f.TrialStage) {
		return false
	}
	if f.Scope != "" && rec.Scope != f.Scope {
		return false
	}
	return true
}

func window[T any](rows []T, page models.Page) []T {
	out := []T{}
	if page.Offset >= len(rows) || page.Limit <= 0 {
		return out
	}
	end := page.Offset + page.Limit
	if end > len(rows) || end < page.Offset {
		end = len(rows)
	}
	return append(out, rows[page.Offset:end]...)
}
