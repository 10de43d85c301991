package taskshandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsflow/internal/auth"
	"opsflow/internal/domain/tasks"
	"opsflow/internal/requestctx"
)

const taskID = "3f2a1b0c-9d8e-4f7a-8b6c-5d4e3f2a1b0c"

type fakeService struct {
	task     tasks.Task
	moved    *tasks.MoveInput
	created  *tasks.CreateInput
	boardHit bool
}

func (f *fakeService) Get(_ context.Context, id string) (*tasks.Task, error) {
	if id != f.task.ID {
		return nil, tasks.ErrTaskNotFound
	}
	out := f.task
	return &out, nil
}

func (f *fakeService) List(_ context.Context, _ tasks.ListFilter) ([]tasks.Task, error) {
	return []tasks.Task{f.task}, nil
}

func (f *fakeService) Board(_ context.Context, _ tasks.ListFilter) (*tasks.Board, error) {
	f.boardHit = true
	return &tasks.Board{Columns: []tasks.Column{{Status: tasks.StatusTodo, Tasks: []tasks.Task{f.task}}}}, nil
}

func (f *fakeService) Create(_ context.Context, in tasks.CreateInput) (*tasks.Task, error) {
	f.created = &in
	return &tasks.Task{ID: "new", Title: in.Title, Status: tasks.StatusTodo, Priority: tasks.PriorityMedium}, nil
}

func (f *fakeService) Update(ctx context.Context, id string, _ tasks.UpdateInput) (*tasks.Task, error) {
	return f.Get(ctx, id)
}

func (f *fakeService) Move(_ context.Context, id string, in tasks.MoveInput) (*tasks.Task, error) {
	if id != f.task.ID {
		return nil, tasks.ErrTaskNotFound
	}
	f.moved = &in
	out := f.task
	out.Status, out.Position = in.Status, in.Position
	return &out, nil
}

func (f *fakeService) Delete(_ context.Context, _ string) error {
	return nil
}

type fakeRecorder struct {
	actions []string
}

func (f *fakeRecorder) Record(_ context.Context, action, _, _ string, _, _ any) error {
	f.actions = append(f.actions, action)
	return nil
}

func serve(t *testing.T, svc Service, rec *fakeRecorder, role, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := requestctx.WithActor(req.Context(), requestctx.Actor{Subject: "u1", Role: role})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	NewHandler(svc, rec).RegisterRoutes(r)

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)
	return res
}

func newFake() *fakeService {
	return &fakeService{task: tasks.Task{ID: taskID, Title: "Order laptops", Status: tasks.StatusTodo, Priority: tasks.PriorityHigh}}
}

func TestListBoardView(t *testing.T) {
	svc := newFake()
	res := serve(t, svc, &fakeRecorder{}, auth.RoleStaff, http.MethodGet, "/tasks?view=board", "")

	require.Equal(t, http.StatusOK, res.Code)
	assert.True(t, svc.boardHit)
	var board tasks.Board
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &board))
	require.Len(t, board.Columns, 1)
	assert.Equal(t, taskID, board.Columns[0].Tasks[0].ID)
}

func TestListIsPlainArray(t *testing.T) {
	svc := newFake()
	res := serve(t, svc, &fakeRecorder{}, auth.RoleStaff, http.MethodGet, "/tasks", "")

	require.Equal(t, http.StatusOK, res.Code)
	assert.False(t, svc.boardHit)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(res.Body.String()), "["))
}

func TestCreateValidation(t *testing.T) {
	res := serve(t, newFake(), &fakeRecorder{}, auth.RoleStaff, http.MethodPost, "/tasks",
		`{"title":" ","assigneeId":"nope","dueDate":"31/12/2026"}`)

	require.Equal(t, http.StatusBadRequest, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, `"field":"title"`)
	assert.Contains(t, body, `"field":"assigneeId"`)
	assert.Contains(t, body, `"field":"dueDate"`)
}

func TestCreateByStaff(t *testing.T) {
	svc := newFake()
	rec := &fakeRecorder{}
	res := serve(t, svc, rec, auth.RoleStaff, http.MethodPost, "/tasks", `{"title":"Book venue","dueDate":"2026-11-02"}`)

	require.Equal(t, http.StatusCreated, res.Code)
	require.NotNil(t, svc.created)
	require.NotNil(t, svc.created.DueDate)
	assert.Equal(t, "2026-11-02", svc.created.DueDate.Format("2006-01-02"))
	assert.Equal(t, []string{"create"}, rec.actions)
}

func TestMove(t *testing.T) {
	svc := newFake()
	rec := &fakeRecorder{}
	res := serve(t, svc, rec, auth.RoleHR, http.MethodPost, "/tasks/"+taskID+"/move", `{"status":"In Progress","position":0}`)

	require.Equal(t, http.StatusOK, res.Code)
	require.NotNil(t, svc.moved)
	assert.Equal(t, "In Progress", svc.moved.Status)
	assert.Equal(t, 0, svc.moved.Position)
	assert.Equal(t, []string{"move"}, rec.actions)
}

func TestMoveRequiresPosition(t *testing.T) {
	svc := newFake()
	res := serve(t, svc, &fakeRecorder{}, auth.RoleHR, http.MethodPost, "/tasks/"+taskID+"/move", `{"status":"done"}`)

	require.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), `"field":"position"`)
	assert.Nil(t, svc.moved)
}

func TestMoveUnknownTask(t *testing.T) {
	res := serve(t, newFake(), &fakeRecorder{}, auth.RoleHR, http.MethodPost,
		"/tasks/0a1b2c3d-4e5f-4a6b-8c7d-9e0f1a2b3c4d/move", `{"status":"done","position":1}`)

	assert.Equal(t, http.StatusNotFound, res.Code)
}
