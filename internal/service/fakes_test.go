package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/yourorg/taskboard/internal/domain"
)

type memUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.User
	byEmail map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[string]*domain.User{}, byEmail: map[string]*domain.User{}}
}

func copyUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

func (m *memUserRepo) Create(ctx context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == "" {
		u.ID = "u-" + u.Email
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	u.UpdatedAt = u.CreatedAt
	m.byID[u.ID] = copyUser(u)
	m.byEmail[u.Email] = m.byID[u.ID]
	return nil
}

func (m *memUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		return copyUser(u), nil
	}
	return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
}

func (m *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byEmail[email]; ok {
		return copyUser(u), nil
	}
	return nil, fmt.Errorf("user %s: %w", email, domain.ErrNotFound)
}

func (m *memUserRepo) Update(ctx context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[u.ID]; !ok {
		return fmt.Errorf("user %s: %w", u.ID, domain.ErrNotFound)
	}
	u.UpdatedAt = time.Now()
	m.byID[u.ID] = copyUser(u)
	m.byEmail[u.Email] = m.byID[u.ID]
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
		if filter.HasManager != nil && (u.ManagerID != "") != *filter.HasManager {
			continue
		}
		if len(filter.Roles) > 0 {
			match := false
			for _, r := range filter.Roles {
				if u.Role == r {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, copyUser(u))
	}
	sort.Slice(out, func(i, j int) bool {
		if sortAsc {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

type memTaskRepo struct {
	mu    sync.Mutex
	tasks map[string]*domain.Task
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{tasks: map[string]*domain.Task{}}
}

func copyTask(t *domain.Task) *domain.Task {
	c := *t
	return &c
}

func (m *memTaskRepo) Insert(ctx context.Context, t *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	m.tasks[t.ID] = copyTask(t)
	return nil
}

func (m *memTaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tasks[id]; ok {
		return copyTask(t), nil
	}
	return nil, fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
}

func (m *memTaskRepo) Save(ctx context.Context, t *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[t.ID]; !ok {
		return fmt.Errorf("task %s: %w", t.ID, domain.ErrNotFound)
	}
	t.UpdatedAt = time.Now()
	m.tasks[t.ID] = copyTask(t)
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
	if f.ManagerScope != "" && !(t.ManagerID == f.ManagerScope || !t.Assigned()) {
		return false
	}
	if f.Unassigned && t.Assigned() {
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
			out = append(out, copyTask(t))
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

type recordingDispatcher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, event domain.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
}

func (d *recordingDispatcher) all() []domain.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]domain.Event, len(d.events))
	copy(out, d.events)
	return out
}

func (d *recordingDispatcher) last() (domain.Event, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.events) == 0 {
		return domain.Event{}, false
	}
	return d.events[len(d.events)-1], true
}

func (d *recordingDispatcher) reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = nil
}
