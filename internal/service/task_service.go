package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourorg/taskboard/internal/cache"
	"github.com/yourorg/taskboard/internal/dates"
	"github.com/yourorg/taskboard/internal/domain"
	"github.com/yourorg/taskboard/internal/security"
)

// EventDispatcher delivers a mutation event to the notification channels
type EventDispatcher interface {
	Dispatch(ctx context.Context, event domain.Event)
}

// TaskServiceConfig carries the cache tuning knobs. StrictCacheAuth
// re-evaluates visibility on cache hits; Invalidation deletes and
// regenerates keys on mutation instead of waiting out the TTL.
type TaskServiceConfig struct {
	CacheTTL        time.Duration
	StrictCacheAuth bool
	Invalidation    bool
}

// TaskService implements the task ledger operations: authorization first,
// then storage through the read-through cache, then notification fan-out.
type TaskService struct {
	taskRepo   domain.TaskRepository
	userRepo   domain.UserRepository
	engine     *security.Engine
	store      cache.Store
	dispatcher EventDispatcher
	cfg        TaskServiceConfig
	logger     *slog.Logger
}

// NewTaskService creates a task service
func NewTaskService(
	taskRepo domain.TaskRepository,
	userRepo domain.UserRepository,
	engine *security.Engine,
	store cache.Store,
	dispatcher EventDispatcher,
	cfg TaskServiceConfig,
	logger *slog.Logger,
) *TaskService {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	return &TaskService{
		taskRepo:   taskRepo,
		userRepo:   userRepo,
		engine:     engine,
		store:      store,
		dispatcher: dispatcher,
		cfg:        cfg,
		logger:     logger,
	}
}

// CreateTaskRequest is the payload for creating a task. DueDate arrives in
// DD/MM/YYYY form.
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	AssignedTo  string `json:"assignedTo"`
}

// CreateTask creates a task. Admin-only. When the request names an assignee
// the task inherits that user's manager, so team scoping works from the
// first read.
func (s *TaskService) CreateTask(ctx context.Context, actor domain.Actor, req CreateTaskRequest) (*domain.Task, error) {
	if err := s.engine.DecideCreate(actor); err != nil {
		return nil, err
	}

	if req.Title == "" {
		return nil, fmt.Errorf("title is required: %w", domain.ErrValidation)
	}
	if req.Description == "" {
		return nil, fmt.Errorf("description is required: %w", domain.ErrValidation)
	}
	dueDate, err := dates.ParseDueDate(req.DueDate)
	if err != nil {
		return nil, err
	}

	priority := domain.Priority(req.Priority)
	if priority == "" {
		priority = domain.PriorityLow
	}
	if !priority.Valid() {
		return nil, fmt.Errorf("invalid priority %q: %w", req.Priority, domain.ErrValidation)
	}

	status := domain.Status(req.Status)
	if status == "" {
		status = domain.StatusPending
	}
	if !status.Valid() {
		return nil, fmt.Errorf("invalid status %q: %w", req.Status, domain.ErrValidation)
	}

	task := &domain.Task{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		DueDate:     dueDate,
		Priority:    priority,
		Status:      status,
		CreatedBy:   actor.ID,
	}

	if req.AssignedTo != "" {
		assignee, err := s.userRepo.GetByID(ctx, req.AssignedTo)
		if err != nil {
			return nil, fmt.Errorf("assignee %s: %w", req.AssignedTo, domain.ErrValidation)
		}
		task.AssignedTo = assignee.ID
		task.ManagerID = assignee.ManagerID
	}

	if err := s.taskRepo.Insert(ctx, task); err != nil {
		return nil, err
	}

	s.invalidateTask(ctx, task.ID)
	s.dispatcher.Dispatch(ctx, domain.Event{Type: domain.EventTaskCreated, Task: task})

	s.logger.Info("task created",
		slog.String("task_id", task.ID),
		slog.String("created_by", actor.ID),
	)
	return task, nil
}

// GetTask returns a single task through the read-through cache.
//
// On a cache hit with StrictCacheAuth disabled the cached payload is
// returned without re-evaluating visibility, so an actor whose access was
// revoked after the entry was populated keeps reading it until the TTL
// expires. StrictCacheAuth re-runs the visibility check against the cached
// state at the cost of one policy evaluation per hit.
func (s *TaskService) GetTask(ctx context.Context, actor domain.Actor, id string) (*domain.Task, error) {
	if !s.engine.HasOperation(actor.Role, security.OpReadTask) {
		return nil, fmt.Errorf("unauthorized operation: %w", domain.ErrForbidden)
	}

	key := cache.TaskKey(id)
	if payload, ok := s.store.Get(ctx, key); ok {
		var task domain.Task
		if err := json.Unmarshal([]byte(payload), &task); err == nil {
			if !s.cfg.StrictCacheAuth {
				return &task, nil
			}
			if s.engine.CanView(actor, &task) {
				return &task, nil
			}
			return nil, fmt.Errorf("unauthorized access: %w", domain.ErrForbidden)
		}
		s.logger.Warn("corrupt cache entry, falling through", slog.String("key", key))
	}

	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.engine.CanView(actor, task) {
		return nil, fmt.Errorf("unauthorized access: %w", domain.ErrForbidden)
	}

	if payload, err := json.Marshal(task); err == nil {
		s.store.Set(ctx, key, string(payload), s.cfg.CacheTTL)
	}
	return task, nil
}

// ListQuery carries the optional list filters from the request
type ListQuery struct {
	Status     string // comma-separated set, any match
	Priority   string
	DueDate    string // DD/MM/YYYY, matches tasks due that day
	Unassigned bool
	SortDesc   bool
}

// ListTasks returns the actor's role-scoped slice of the ledger, optionally
// filtered, ordered by due date. List cache keys embed the resolved scope
// so differently privileged actors never share an entry.
func (s *TaskService) ListTasks(ctx context.Context, actor domain.Actor, query ListQuery) ([]*domain.Task, error) {
	filter, err := s.engine.ListScope(actor)
	if err != nil {
		return nil, err
	}

	if query.Status != "" {
		for _, part := range strings.Split(query.Status, ",") {
			status := domain.Status(strings.TrimSpace(part))
			if !status.Valid() {
				return nil, fmt.Errorf("invalid status %q: %w", part, domain.ErrValidation)
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}
	if query.Priority != "" {
		priority := domain.Priority(query.Priority)
		if !priority.Valid() {
			return nil, fmt.Errorf("invalid priority %q: %w", query.Priority, domain.ErrValidation)
		}
		filter.Priority = priority
	}
	if query.DueDate != "" {
		day, err := dates.ParseDueDate(query.DueDate)
		if err != nil {
			return nil, err
		}
		from, to := dates.DayWindow(day)
		filter.DueFrom = &from
		filter.DueTo = &to
	}
	if query.Unassigned {
		filter.Unassigned = true
	}

	sort := domain.TaskSort{Field: "dueDate", Desc: query.SortDesc}
	key := cache.ListKey(s.generation(ctx), filter, sort)

	if payload, ok := s.store.Get(ctx, key); ok {
		var tasks []*domain.Task
		if err := json.Unmarshal([]byte(payload), &tasks); err == nil {
			return tasks, nil
		}
		s.logger.Warn("corrupt cache entry, falling through", slog.String("key", key))
	}

	tasks, err := s.taskRepo.Find(ctx, filter, sort)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}

	if payload, err := json.Marshal(tasks); err == nil {
		s.store.Set(ctx, key, string(payload), s.cfg.CacheTTL)
	}
	return tasks, nil
}

// UpdateTaskRequest carries a partial update. Only present fields are
// requested changes.
type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"dueDate"`
	Priority    *string `json:"priority"`
	Status      *string `json:"status"`
}

func (r UpdateTaskRequest) fields() []string {
	var fields []string
	if r.Title != nil {
		fields = append(fields, "title")
	}
	if r.Description != nil {
		fields = append(fields, "description")
	}
	if r.DueDate != nil {
		fields = append(fields, "dueDate")
	}
	if r.Priority != nil {
		fields = append(fields, "priority")
	}
	if r.Status != nil {
		fields = append(fields, "status")
	}
	return fields
}

// UpdateTask applies the fields the actor's role may change. Managers have
// out-of-policy fields dropped silently; users are rejected outright for
// them. Admins always notify the assignee; managers and users notify only
// when an applied field actually changed a value. Concurrent updates are
// last-write-wins over the full task state.
func (s *TaskService) UpdateTask(ctx context.Context, actor domain.Actor, id string, req UpdateTaskRequest) (*domain.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed, err := s.engine.DecideUpdate(actor, task, req.fields())
	if err != nil {
		return nil, err
	}

	changed := false
	for _, field := range allowed {
		switch field {
		case "title":
			if task.Title != *req.Title {
				task.Title = *req.Title
				changed = true
			}
		case "description":
			if task.Description != *req.Description {
				task.Description = *req.Description
				changed = true
			}
		case "dueDate":
			dueDate, err := dates.ParseDueDate(*req.DueDate)
			if err != nil {
				return nil, err
			}
			if !task.DueDate.Equal(dueDate) {
				task.DueDate = dueDate
				changed = true
			}
		case "priority":
			priority := domain.Priority(*req.Priority)
			if !priority.Valid() {
				return nil, fmt.Errorf("invalid priority %q: %w", *req.Priority, domain.ErrValidation)
			}
			if task.Priority != priority {
				task.Priority = priority
				changed = true
			}
		case "status":
			status := domain.Status(*req.Status)
			if !status.Valid() {
				return nil, fmt.Errorf("invalid status %q: %w", *req.Status, domain.ErrValidation)
			}
			if task.Status != status {
				task.Status = status
				changed = true
			}
		}
	}

	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}

	s.invalidateTask(ctx, task.ID)

	if actor.Role == domain.RoleAdmin || changed {
		s.dispatcher.Dispatch(ctx, domain.Event{Type: domain.EventTaskUpdated, Task: task})
	}
	return task, nil
}

// AssignTask assigns an unassigned task to a user. The task adopts the
// assignee's manager. Reassignment requires an explicit unassign first.
func (s *TaskService) AssignTask(ctx context.Context, actor domain.Actor, taskID, userID string) (*domain.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	assignee, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.engine.DecideAssign(actor, task, assignee); err != nil {
		return nil, err
	}

	task.AssignedTo = assignee.ID
	task.ManagerID = assignee.ManagerID

	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}

	s.invalidateTask(ctx, task.ID)
	s.dispatcher.Dispatch(ctx, domain.Event{Type: domain.EventTaskAssigned, Task: task})

	s.logger.Info("task assigned",
		slog.String("task_id", task.ID),
		slog.String("assignee_id", assignee.ID),
		slog.String("actor_id", actor.ID),
	)
	return task, nil
}

// UnassignTask clears a task's assignee and team, returning it to the
// unassigned pool every manager can see.
func (s *TaskService) UnassignTask(ctx context.Context, actor domain.Actor, taskID string) (*domain.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if err := s.engine.DecideUnassign(actor, task); err != nil {
		return nil, err
	}

	task.AssignedTo = ""
	task.ManagerID = ""

	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}

	s.invalidateTask(ctx, task.ID)
	s.dispatcher.Dispatch(ctx, domain.Event{Type: domain.EventTaskUnassigned, Task: task})
	return task, nil
}

// DeleteTask removes a task permanently. Admin-only.
func (s *TaskService) DeleteTask(ctx context.Context, actor domain.Actor, id string) error {
	if err := s.engine.DecideDelete(actor); err != nil {
		return err
	}

	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.taskRepo.DeleteByID(ctx, id); err != nil {
		return err
	}

	s.invalidateTask(ctx, id)
	s.dispatcher.Dispatch(ctx, domain.Event{Type: domain.EventTaskDeleted, Task: task})

	s.logger.Info("task deleted",
		slog.String("task_id", id),
		slog.String("actor_id", actor.ID),
	)
	return nil
}

// Analytics computes task counts over the actor's role scope. Always
// computed fresh; the counts change too often to cache usefully.
func (s *TaskService) Analytics(ctx context.Context, actor domain.Actor) (*domain.Analytics, error) {
	if !s.engine.HasOperation(actor.Role, security.OpTaskAnalytics) {
		return nil, fmt.Errorf("unauthorized operation: %w", domain.ErrForbidden)
	}
	scope, err := s.engine.ListScope(actor)
	if err != nil {
		return nil, err
	}
	return s.computeAnalytics(ctx, scope)
}

// GlobalAnalytics computes counts over the whole ledger, for the periodic
// admin push.
func (s *TaskService) GlobalAnalytics(ctx context.Context) (*domain.Analytics, error) {
	return s.computeAnalytics(ctx, domain.TaskFilter{})
}

func (s *TaskService) computeAnalytics(ctx context.Context, scope domain.TaskFilter) (*domain.Analytics, error) {
	analytics := &domain.Analytics{}

	var err error
	if analytics.Total, err = s.taskRepo.Count(ctx, scope); err != nil {
		return nil, err
	}

	for _, c := range []struct {
		status domain.Status
		dest   *int
	}{
		{domain.StatusPending, &analytics.Pending},
		{domain.StatusInProgress, &analytics.InProgress},
		{domain.StatusCompleted, &analytics.Completed},
	} {
		f := scope
		f.Statuses = []domain.Status{c.status}
		if *c.dest, err = s.taskRepo.Count(ctx, f); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	overdue := scope
	overdue.NotStatus = domain.StatusCompleted
	overdue.DueBefore = &now
	if analytics.Overdue, err = s.taskRepo.Count(ctx, overdue); err != nil {
		return nil, err
	}

	return analytics, nil
}

// invalidateTask runs the post-mutation cache maintenance. With
// invalidation disabled this is a no-op and readers see stale entries for
// up to the TTL; with it enabled the task's exact key is deleted and the
// list generation is bumped, orphaning every list entry at once.
func (s *TaskService) invalidateTask(ctx context.Context, taskID string) {
	if !s.cfg.Invalidation {
		return
	}
	s.store.Delete(ctx, cache.TaskKey(taskID))
	s.store.Incr(ctx, cache.GenerationKey)
}

// generation reads the current list-key generation, zero when invalidation
// has never bumped it or the backend is unreachable.
func (s *TaskService) generation(ctx context.Context) int64 {
	return s.store.Counter(ctx, cache.GenerationKey)
}
