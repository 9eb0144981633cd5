package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/todolist/todolist/internal/auth"
	"github.com/todolist/todolist/internal/model"
	"github.com/todolist/todolist/internal/service"
)

var testTime = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// serve routes one request through a chi router so URL params resolve.
// A non-empty userID is attached as the authenticated principal.
func serve(t *testing.T, pattern string, h http.HandlerFunc, method, target, body, userID string) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req = req.WithContext(auth.ContextWithPrincipal(req.Context(), &model.Principal{UserID: userID}))
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

type fakeAuth struct {
	registerIn  service.RegisterInput
	registerErr error
	loginErr    error
}

func (f *fakeAuth) Register(ctx context.Context, in service.RegisterInput) (*model.User, error) {
	f.registerIn = in
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &model.User{ID: "u1", Username: in.Username, Email: in.Email, PasswordHash: "hash", CreatedAt: testTime, UpdatedAt: testTime}, nil
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (*service.LoginResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &service.LoginResult{
		Token:     "signed.jwt.token",
		ExpiresAt: time.Now().Add(12 * time.Hour),
		User:      &model.User{ID: "u1", Username: "ann", Email: email},
	}, nil
}

type fakeUserManager struct {
	user     *model.User
	updateIn service.UpdateProfileInput
	err      error
	deleted  string
}

func (f *fakeUserManager) Get(ctx context.Context, id string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func (f *fakeUserManager) UpdateProfile(ctx context.Context, in service.UpdateProfileInput) (*model.User, error) {
	f.updateIn = in
	if f.err != nil {
		return nil, f.err
	}
	u := *f.user
	if in.Username != nil {
		u.Username = *in.Username
	}
	return &u, nil
}

func (f *fakeUserManager) Delete(ctx context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = id
	return nil
}

type fakeTaskManager struct {
	tasks      map[string]*model.Task
	createIn   service.CreateTaskInput
	listIn     service.ListTasksInput
	updateIn   service.UpdateTaskInput
	completeIn [3]string
	err        error
}

func newFakeTaskManager() *fakeTaskManager {
	return &fakeTaskManager{tasks: map[string]*model.Task{
		"t1": {ID: "t1", Title: "Pay rent", DueDate: testTime, CategoryID: "c1", StatusID: "s1", UserID: "u1", CreatedAt: testTime, UpdatedAt: testTime},
	}}
}

func (f *fakeTaskManager) Create(ctx context.Context, in service.CreateTaskInput) (*model.Task, error) {
	f.createIn = in
	if f.err != nil {
		return nil, f.err
	}
	return &model.Task{ID: "t2", Title: in.Title, DueDate: in.DueDate, CategoryID: in.CategoryID, StatusID: in.StatusID, UserID: in.UserID}, nil
}

func (f *fakeTaskManager) Get(ctx context.Context, userID, id string) (*model.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.tasks[id]
	if !ok || t.UserID != userID {
		return nil, service.ErrTaskNotFound
	}
	return t, nil
}

func (f *fakeTaskManager) List(ctx context.Context, in service.ListTasksInput) (*service.ListTasksOutput, error) {
	f.listIn = in
	if f.err != nil {
		return nil, f.err
	}
	return &service.ListTasksOutput{Tasks: []*model.Task{f.tasks["t1"]}, NextCursor: "next", HasMore: true}, nil
}

func (f *fakeTaskManager) Update(ctx context.Context, in service.UpdateTaskInput) (*model.Task, error) {
	f.updateIn = in
	if f.err != nil {
		return nil, f.err
	}
	t := *f.tasks["t1"]
	if in.Title != nil {
		t.Title = *in.Title
	}
	return &t, nil
}

func (f *fakeTaskManager) MarkCompleted(ctx context.Context, userID, taskID, statusID string) (*model.Task, error) {
	f.completeIn = [3]string{userID, taskID, statusID}
	if f.err != nil {
		return nil, f.err
	}
	t := *f.tasks["t1"]
	t.StatusID = "s-done"
	return &t, nil
}

func (f *fakeTaskManager) Delete(ctx context.Context, userID, id string) error {
	if f.err != nil {
		return f.err
	}
	if _, err := f.Get(ctx, userID, id); err != nil {
		return err
	}
	delete(f.tasks, id)
	return nil
}

type fakeCatalog struct {
	err        error
	renamed    [2]string
	statusIn   service.UpdateStatusInput
	categories []*model.Category
}

func (f *fakeCatalog) CreateCategory(ctx context.Context, name string) (*model.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.Category{ID: "c-new", Name: name, CreatedAt: testTime}, nil
}

func (f *fakeCatalog) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.Category{ID: id, Name: "Work"}, nil
}

func (f *fakeCatalog) ListCategories(ctx context.Context) ([]*model.Category, error) {
	return f.categories, f.err
}

func (f *fakeCatalog) RenameCategory(ctx context.Context, id, name string) (*model.Category, error) {
	f.renamed = [2]string{id, name}
	if f.err != nil {
		return nil, f.err
	}
	return &model.Category{ID: id, Name: name}, nil
}

func (f *fakeCatalog) DeleteCategory(ctx context.Context, id string) error { return f.err }

func (f *fakeCatalog) CreateStatus(ctx context.Context, name string, completed bool) (*model.Status, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.Status{ID: "s-new", Name: name, IsCompleted: completed}, nil
}

func (f *fakeCatalog) GetStatus(ctx context.Context, id string) (*model.Status, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.Status{ID: id, Name: "Done", IsCompleted: true}, nil
}

func (f *fakeCatalog) ListStatuses(ctx context.Context) ([]*model.Status, error) {
	return []*model.Status{}, f.err
}

func (f *fakeCatalog) UpdateStatus(ctx context.Context, in service.UpdateStatusInput) (*model.Status, error) {
	f.statusIn = in
	if f.err != nil {
		return nil, f.err
	}
	return &model.Status{ID: in.ID, Name: "Done", IsCompleted: in.IsCompleted != nil && *in.IsCompleted}, nil
}

func (f *fakeCatalog) DeleteStatus(ctx context.Context, id string) error { return f.err }

type fakeExpenseManager struct {
	createIn service.CreateExpenseInput
	updateIn service.UpdateExpenseInput
	err      error
}

func (f *fakeExpenseManager) Create(ctx context.Context, in service.CreateExpenseInput) (*model.Expense, error) {
	f.createIn = in
	if f.err != nil {
		return nil, f.err
	}
	spent := testTime
	if in.SpentAt != nil {
		spent = *in.SpentAt
	}
	minor, err := model.ParseAmount(in.Amount)
	if err != nil {
		return nil, err
	}
	return &model.Expense{ID: "e1", TaskID: in.TaskID, AmountMinor: minor, Currency: "RUB", SpentAt: spent}, nil
}

func (f *fakeExpenseManager) Get(ctx context.Context, userID, id string) (*model.Expense, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.Expense{ID: id, TaskID: "t1", AmountMinor: 1999, Currency: "EUR", SpentAt: testTime}, nil
}

func (f *fakeExpenseManager) ListByTask(ctx context.Context, userID, taskID string) ([]*model.Expense, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []*model.Expense{}, nil
}

func (f *fakeExpenseManager) Update(ctx context.Context, in service.UpdateExpenseInput) (*model.Expense, error) {
	f.updateIn = in
	if f.err != nil {
		return nil, f.err
	}
	return &model.Expense{ID: in.ID, TaskID: "t1", AmountMinor: 500, Currency: "RUB", SpentAt: testTime}, nil
}

func (f *fakeExpenseManager) Delete(ctx context.Context, userID, id string) error { return f.err }
