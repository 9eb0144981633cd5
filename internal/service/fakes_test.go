package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/todolist/todolist/internal/model"
	"github.com/todolist/todolist/internal/repository"
)

// fakeUserStore is an in-memory UserStore.
type fakeUserStore struct {
	mu        sync.Mutex
	byID      map[string]*model.User
	createErr error
	lookupErr error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byID: map[string]*model.User{}}
}

func (f *fakeUserStore) CreateUser(ctx context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUserStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserStore) UpdateUser(ctx context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[u.ID]; !ok {
		return repository.ErrUserNotFound
	}
	for id, existing := range f.byID {
		if id != u.ID && existing.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUserStore) DeleteUser(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeUserStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

// fakeHasher is a cheap, deterministic PasswordHasher that counts calls.
type fakeHasher struct {
	mu        sync.Mutex
	generated int
	verified  int
}

func (h *fakeHasher) Generate(password string) (string, error) {
	h.mu.Lock()
	h.generated++
	h.mu.Unlock()
	return "hashed:" + password, nil
}

func (h *fakeHasher) Verify(password, hash string) bool {
	h.mu.Lock()
	h.verified++
	h.mu.Unlock()
	return hash == "hashed:"+password
}

func (h *fakeHasher) counts() (generated, verified int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.generated, h.verified
}

// fakeTokens issues predictable tokens.
type fakeTokens struct {
	now time.Time
}

func (f *fakeTokens) Issue(userID string, expiryHours int) (string, time.Time, error) {
	if userID == "" || expiryHours <= 0 {
		return "", time.Time{}, fmt.Errorf("bad issue request")
	}
	return "token-for-" + userID, f.now.Add(time.Duration(expiryHours) * time.Hour), nil
}

// fakeInvalidator records invalidated principals.
type fakeInvalidator struct {
	mu      sync.Mutex
	deleted []string
	err     error
}

func (f *fakeInvalidator) DeletePrincipal(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, userID)
	return f.err
}

// fakeTaskStore is an in-memory TaskStore.
type fakeTaskStore struct {
	mu    sync.Mutex
	tasks map[string]*model.Task
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: map[string]*model.Task{}}
}

func (f *fakeTaskStore) CreateTask(ctx context.Context, t *model.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *t
	f.tasks[t.ID] = &cp
	return nil
}

func (f *fakeTaskStore) GetTaskByID(ctx context.Context, id string) (*model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok {
		return nil, repository.ErrTaskNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTaskStore) ListTasks(ctx context.Context, filter repository.TaskFilter, cursor string, limit int) ([]*model.Task, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cursor != "" {
		return nil, "", repository.ErrInvalidCursor
	}
	var out []*model.Task
	for _, t := range f.tasks {
		if t.UserID != filter.UserID {
			continue
		}
		if filter.StatusID != "" && t.StatusID != filter.StatusID {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		return out[:limit], "more", nil
	}
	return out, "", nil
}

func (f *fakeTaskStore) UpdateTask(ctx context.Context, t *model.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.tasks[t.ID]
	if !ok || existing.UserID != t.UserID {
		return repository.ErrTaskNotFound
	}
	cp := *t
	f.tasks[t.ID] = &cp
	return nil
}

func (f *fakeTaskStore) SetTaskStatus(ctx context.Context, taskID, userID, statusID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[taskID]
	if !ok || t.UserID != userID {
		return repository.ErrTaskNotFound
	}
	t.StatusID = statusID
	return nil
}

func (f *fakeTaskStore) DeleteTask(ctx context.Context, id, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok || t.UserID != userID {
		return repository.ErrTaskNotFound
	}
	delete(f.tasks, id)
	return nil
}

// fakeCatalog is an in-memory CatalogStore. inUse marks IDs referenced by tasks.
type fakeCatalog struct {
	mu         sync.Mutex
	categories map[string]*model.Category
	statuses   map[string]*model.Status
	inUse      map[string]bool
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		categories: map[string]*model.Category{},
		statuses:   map[string]*model.Status{},
		inUse:      map[string]bool{},
	}
}

func (f *fakeCatalog) CreateCategory(ctx context.Context, c *model.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *c
	f.categories[c.ID] = &cp
	return nil
}

func (f *fakeCatalog) GetCategoryByID(ctx context.Context, id string) (*model.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCatalog) ListCategories(ctx context.Context) ([]*model.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Category
	for _, c := range f.categories {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return strings.Compare(out[i].Name, out[j].Name) < 0 })
	return out, nil
}

func (f *fakeCatalog) UpdateCategory(ctx context.Context, c *model.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.categories[c.ID]; !ok {
		return repository.ErrCategoryNotFound
	}
	cp := *c
	f.categories[c.ID] = &cp
	return nil
}

func (f *fakeCatalog) DeleteCategory(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.categories[id]; !ok {
		return repository.ErrCategoryNotFound
	}
	if f.inUse[id] {
		return repository.ErrCategoryInUse
	}
	delete(f.categories, id)
	return nil
}

func (f *fakeCatalog) CreateStatus(ctx context.Context, s *model.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *s
	f.statuses[s.ID] = &cp
	return nil
}

func (f *fakeCatalog) GetStatusByID(ctx context.Context, id string) (*model.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.statuses[id]
	if !ok {
		return nil, repository.ErrStatusNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeCatalog) ListStatuses(ctx context.Context) ([]*model.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Status
	for _, s := range f.statuses {
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCatalog) UpdateStatus(ctx context.Context, s *model.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.statuses[s.ID]; !ok {
		return repository.ErrStatusNotFound
	}
	cp := *s
	f.statuses[s.ID] = &cp
	return nil
}

func (f *fakeCatalog) DeleteStatus(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.statuses[id]; !ok {
		return repository.ErrStatusNotFound
	}
	if f.inUse[id] {
		return repository.ErrStatusInUse
	}
	delete(f.statuses, id)
	return nil
}

// fakeExpenseStore is an in-memory ExpenseStore.
type fakeExpenseStore struct {
	mu       sync.Mutex
	expenses map[string]*model.Expense
}

func newFakeExpenseStore() *fakeExpenseStore {
	return &fakeExpenseStore{expenses: map[string]*model.Expense{}}
}

func (f *fakeExpenseStore) CreateExpense(ctx context.Context, e *model.Expense) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.expenses {
		if existing.TaskID == e.TaskID {
			return repository.ErrExpenseExists
		}
	}
	cp := *e
	f.expenses[e.ID] = &cp
	return nil
}

func (f *fakeExpenseStore) GetExpenseByID(ctx context.Context, id string) (*model.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.expenses[id]
	if !ok {
		return nil, repository.ErrExpenseNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeExpenseStore) GetExpenseByTaskID(ctx context.Context, taskID string) (*model.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.expenses {
		if e.TaskID == taskID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, repository.ErrExpenseNotFound
}

func (f *fakeExpenseStore) UpdateExpense(ctx context.Context, e *model.Expense) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.expenses[e.ID]; !ok {
		return repository.ErrExpenseNotFound
	}
	cp := *e
	f.expenses[e.ID] = &cp
	return nil
}

func (f *fakeExpenseStore) DeleteExpense(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.expenses[id]; !ok {
		return repository.ErrExpenseNotFound
	}
	delete(f.expenses, id)
	return nil
}
