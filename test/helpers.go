package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yourorg/taskboard/internal/cache"
	"github.com/yourorg/taskboard/internal/domain"
	"github.com/yourorg/taskboard/internal/handler"
	"github.com/yourorg/taskboard/internal/infrastructure/logger"
	"github.com/yourorg/taskboard/internal/notify"
	"github.com/yourorg/taskboard/internal/realtime"
	"github.com/yourorg/taskboard/internal/security"
	"github.com/yourorg/taskboard/internal/security/auth"
	"github.com/yourorg/taskboard/internal/security/middleware"
	"github.com/yourorg/taskboard/internal/service"
)

// TestServerHelper runs the full HTTP stack against in-memory storage
type TestServerHelper struct {
	Server *httptest.Server
	Logger *slog.Logger
	Hub    *realtime.Hub
}

func NewTestServer(t *testing.T) *TestServerHelper {
	log := logger.NewLogger("error")

	userRepo := newMemUserRepo()
	taskRepo := newMemTaskRepo()
	store := cache.NewMemoryStore()
	engine := security.NewEngine(log)
	hub := realtime.NewHub(log)
	dispatcher := notify.NewDispatcher(hub, nil, userRepo, log)
	tokenManager := auth.NewTokenManager("test-secret", "taskboard")

	taskService := service.NewTaskService(taskRepo, userRepo, engine, store, dispatcher, service.TaskServiceConfig{
		CacheTTL: time.Minute,
	}, log)
	authService := service.NewAuthService(userRepo, tokenManager, nil, engine, store, time.Minute, time.Hour, log)

	authHandler := handler.NewAuthHandler(authService, log)
	taskHandler := handler.NewTaskHandler(taskService, log)
	wsHandler := handler.NewWSHandler(hub, nil, log)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/auth/profiles", authHandler.Profiles)
	mux.HandleFunc("GET /api/auth/profiles/{id}", authHandler.Profile)
	mux.HandleFunc("POST /api/auth/assign-manager", authHandler.AssignManager)

	mux.HandleFunc("POST /api/tasks", taskHandler.Create)
	mux.HandleFunc("GET /api/tasks", taskHandler.List)
	mux.HandleFunc("GET /api/tasks/analytics", taskHandler.Analytics)
	mux.HandleFunc("GET /api/tasks/{id}", taskHandler.Get)
	mux.HandleFunc("PUT /api/tasks/{id}", taskHandler.Update)
	mux.HandleFunc("DELETE /api/tasks/{id}", taskHandler.Delete)
	mux.HandleFunc("POST /api/tasks/{id}/assign", taskHandler.Assign)
	mux.HandleFunc("POST /api/tasks/{id}/unassign", taskHandler.Unassign)

	mux.Handle("GET /ws", wsHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	root := middleware.JWTMiddleware(tokenManager, nil, log)(mux)
	server := httptest.NewServer(root)

	return &TestServerHelper{Server: server, Logger: log, Hub: hub}
}

func (h *TestServerHelper) Close() {
	h.Server.Close()
}

func (h *TestServerHelper) URL() string {
	return h.Server.URL
}

// Register creates an account through the API and returns its ID
func (h *TestServerHelper) Register(t *testing.T, username, email, role, managerID string) string {
	t.Helper()
	payload := map[string]string{
		"username": username,
		"email":    email,
		"password": "Password123",
		"role":     role,
	}
	if managerID != "" {
		payload["managerId"] = managerID
	}
	var result map[string]any
	resp := h.DoJSON(t, "POST", "/api/auth/register", "", payload, &result)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s failed: %d %v", email, resp.StatusCode, result)
	}
	return result["id"].(string)
}

// Login authenticates through the API and returns a bearer token
func (h *TestServerHelper) Login(t *testing.T, email string) string {
	t.Helper()
	var result map[string]any
	resp := h.DoJSON(t, "POST", "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": "Password123",
	}, &result)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s failed: %d %v", email, resp.StatusCode, result)
	}
	return result["token"].(string)
}

// DoJSON performs a JSON request, decoding the response body into out when
// it is non-nil
func (h *TestServerHelper) DoJSON(t *testing.T, method, path, token string, payload any, out any) *http.Response {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, h.URL()+path, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		json.NewDecoder(resp.Body).Decode(out)
	}
	return resp
}

// AssertStatusCode helper function
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("Expected status %d, got %d", expected, resp.StatusCode)
	}
}

// In-memory repositories backing the test server

type memUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.User
	byEmail map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[string]*domain.User{}, byEmail: map[string]*domain.User{}}
}

func (m *memUserRepo) Create(ctx context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *u
	m.byID[u.ID] = &c
	m.byEmail[u.Email] = &c
	return nil
}

func (m *memUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
}

func (m *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byEmail[email]; ok {
		c := *u
		return &c, nil
	}
	return nil, fmt.Errorf("user %s: %w", email, domain.ErrNotFound)
}

func (m *memUserRepo) Update(ctx context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *u
	m.byID[u.ID] = &c
	m.byEmail[u.Email] = &c
	return nil
}

func (m *memUserRepo) Find(ctx context.Context, filter domain.UserFilter, sortAsc bool) ([]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.User
	for _, u := range m.byID {
		if filter.ID != "" && u.ID != filter.ID {
			continue
		}
		if filter.ManagerID != "" && u.ManagerID != filter.ManagerID {
			continue
		}
		c := *u
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

type memTaskRepo struct {
	mu    sync.Mutex
	tasks map[string]*domain.Task
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{tasks: map[string]*domain.Task{}}
}

func (m *memTaskRepo) Insert(ctx context.Context, t *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *t
	m.tasks[t.ID] = &c
	return nil
}

func (m *memTaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tasks[id]; ok {
		c := *t
		return &c, nil
	}
	return nil, fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
}

func (m *memTaskRepo) Save(ctx context.Context, t *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[t.ID]; !ok {
		return fmt.Errorf("task %s: %w", t.ID, domain.ErrNotFound)
	}
	c := *t
	m.tasks[t.ID] = &c
	return nil
}

func (m *memTaskRepo) DeleteByID(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[id]; !ok {
		return fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	}
	delete(m.tasks, id)
	return nil
}

func (m *memTaskRepo) matches(t *domain.Task, f domain.TaskFilter) bool {
	if f.AssignedTo != "" && t.AssignedTo != f.AssignedTo {
		return false
	}
	if f.ManagerScope != "" && !(t.ManagerID == f.ManagerScope || t.AssignedTo == "") {
		return false
	}
	if f.Unassigned && t.AssignedTo != "" {
		return false
	}
	if len(f.Statuses) > 0 {
		match := false
		for _, s := range f.Statuses {
			if t.Status == s {
				match = true
			}
		}
		if !match {
			return false
		}
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.DueFrom != nil && t.DueDate.Before(*f.DueFrom) {
		return false
	}
	if f.DueTo != nil && !t.DueDate.Before(*f.DueTo) {
		return false
	}
	if f.NotStatus != "" && t.Status == f.NotStatus {
		return false
	}
	if f.DueBefore != nil && !t.DueDate.Before(*f.DueBefore) {
		return false
	}
	return true
}

func (m *memTaskRepo) Find(ctx context.Context, filter domain.TaskFilter, s domain.TaskSort) ([]*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Task
	for _, t := range m.tasks {
		if m.matches(t, filter) {
			c := *t
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if s.Desc {
			return out[i].DueDate.After(out[j].DueDate)
		}
		return out[i].DueDate.Before(out[j].DueDate)
	})
	return out, nil
}

func (m *memTaskRepo) Count(ctx context.Context, filter domain.TaskFilter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, t := range m.tasks {
		if m.matches(t, filter) {
			count++
		}
	}
	return count, nil
}
