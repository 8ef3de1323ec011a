package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/yourorg/taskboard/internal/cache"
	"github.com/yourorg/taskboard/internal/domain"
	"github.com/yourorg/taskboard/internal/security"
)

type taskServiceFixture struct {
	svc        *TaskService
	taskRepo   *memTaskRepo
	userRepo   *memUserRepo
	dispatcher *recordingDispatcher
	store      *cache.MemoryStore
}

func newTaskServiceFixture(t *testing.T, cfg TaskServiceConfig) *taskServiceFixture {
	t.Helper()
	taskRepo := newMemTaskRepo()
	userRepo := newMemUserRepo()
	dispatcher := &recordingDispatcher{}
	store := cache.NewMemoryStore()

	svc := NewTaskService(taskRepo, userRepo, security.NewEngine(nil), store, dispatcher, cfg, nil)

	// Two teams: mgr-1 over user-1, mgr-2 over user-2
	for _, u := range []*domain.User{
		{ID: "admin-1", Username: "root", Email: "admin@example.com", Role: domain.RoleAdmin},
		{ID: "mgr-1", Username: "mona", Email: "mona@example.com", Role: domain.RoleManager},
		{ID: "mgr-2", Username: "max", Email: "max@example.com", Role: domain.RoleManager},
		{ID: "user-1", Username: "uma", Email: "uma@example.com", Role: domain.RoleUser, ManagerID: "mgr-1"},
		{ID: "user-2", Username: "ugo", Email: "ugo@example.com", Role: domain.RoleUser, ManagerID: "mgr-2"},
	} {
		if err := userRepo.Create(context.Background(), u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	return &taskServiceFixture{svc: svc, taskRepo: taskRepo, userRepo: userRepo, dispatcher: dispatcher, store: store}
}

var (
	admin = domain.Actor{ID: "admin-1", Role: domain.RoleAdmin}
	mgr1  = domain.Actor{ID: "mgr-1", Role: domain.RoleManager}
	mgr2  = domain.Actor{ID: "mgr-2", Role: domain.RoleManager}
	user1 = domain.Actor{ID: "user-1", Role: domain.RoleUser}
	user2 = domain.Actor{ID: "user-2", Role: domain.RoleUser}
)

func TestCreateTask(t *testing.T) {
	f := newTaskServiceFixture(t, TaskServiceConfig{})
	ctx := context.Background()

	task, err := f.svc.CreateTask(ctx, admin, CreateTaskRequest{
		Title:       "write report",
		Description: "quarterly numbers",
		DueDate:     "15/09/2026",
		AssignedTo:  "user-1",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if task.ID == "" {
		t.Error("expected generated id")
	}
	if task.Priority != domain.PriorityLow || task.Status != domain.StatusPending {
		t.Errorf("expected defaults, got %s/%s", task.Priority, task.Status)
	}
	if task.ManagerID != "mgr-1" {
		t.Errorf("task should inherit assignee's manager, got %q", task.ManagerID)
	}

	event, ok := f.dispatcher.last()
	if !ok || event.Type != domain.EventTaskCreated {
		t.Errorf("expected created event, got %+v", event)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	f := newTaskServiceFixture(t, TaskServiceConfig{})
	ctx := context.Background()

	if _, err := f.svc.CreateTask(ctx, mgr1, CreateTaskRequest{Title: "x", Description: "d", DueDate: "15/09/2026"}); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("manager create: want ErrForbidden, got %v", err)
	}
	if _, err := f.svc.CreateTask(ctx, admin, CreateTaskRequest{Description: "d", DueDate: "15/09/2026"}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("missing title: want ErrValidation, got %v", err)
	}
	if _, err := f.svc.CreateTask(ctx, admin, CreateTaskRequest{Title: "x", DueDate: "15/09/2026"}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("missing description: want ErrValidation, got %v", err)
	}
	if _, err := f.svc.CreateTask(ctx, admin, CreateTaskRequest{Title: "x", Description: "d", DueDate: "2026-09-15"}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("wrong date layout: want ErrValidation, got %v", err)
	}
	if _, err := f.svc.CreateTask(ctx, admin, CreateTaskRequest{Title: "x", Description: "d", DueDate: "15/09/2026", Priority: "urgent"}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("bad priority: want ErrValidation, got %v", err)
	}
	if _, err := f.svc.CreateTask(ctx, admin, CreateTaskRequest{Title: "x", Description: "d", DueDate: "15/09/2026", AssignedTo: "ghost"}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("unknown assignee: want ErrValidation, got %v", err)
	}
}

func (f *taskServiceFixture) mustCreate(t *testing.T, req CreateTaskRequest) *domain.Task {
	t.Helper()
	if req.Description == "" {
		req.Description = "details"
	}
	task, err := f.svc.CreateTask(context.Background(), admin, req)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	f.dispatcher.reset()
	return task
}

func TestGetTaskVisibility(t *testing.T) {
	f := newTaskServiceFixture(t, TaskServiceConfig{})
	ctx := context.Background()
	task := f.mustCreate(t, CreateTaskRequest{Title: "team one work", DueDate: "01/10/2026", AssignedTo: "user-1"})

	cases := []struct {
		name  string
		a     domain.Actor
		allow bool
	}{
		{"admin", admin, true},
		{"owning manager", mgr1, true},
		{"assignee", user1, true},
		{"other manager", mgr2, false},
		{"other user", user2, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// Fresh store per sub-test so cached entries from one actor's
			// read cannot leak into the next
			f.store.Delete(ctx, cache.TaskKey(task.ID))
			_, err := f.svc.GetTask(ctx, tc.a, task.ID)
			if tc.allow && err != nil {
				t.Errorf("expected access, got %v", err)
			}
			if !tc.allow && !errors.Is(err, domain.ErrForbidden) {
				t.Errorf("want ErrForbidden, got %v", err)
			}
		})
	}

	if _, err := f.svc.GetTask(ctx, admin, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing task: want ErrNotFound, got %v", err)
	}
}

func TestCacheHitSkipsVisibilityCheck(t *testing.T) {
	f := newTaskServiceFixture(t, TaskServiceConfig{})
	ctx := context.Background()
	task := f.mustCreate(t, CreateTaskRequest{Title: "secret", DueDate: "01/10/2026", AssignedTo: "user-1"})

	// Admin read populates the cache
	if _, err := f.svc.GetTask(ctx, admin, task.ID); err != nil {
		t.Fatalf("admin read failed: %v", err)
	}

	// user-2 may not view this task, but the cached entry is served before
	// the visibility check runs
	got, err := f.svc.GetTask(ctx, user2, task.ID)
	if err != nil {
		t.Fatalf("expected cache hit to bypass visibility, got %v", err)
	}
	if got.Title != "secret" {
		t.Errorf("got %q", got.Title)
	}
}

func TestStrictCacheAuthRechecksOnHit(t *testing.T) {
	f := newTaskServiceFixture(t, TaskServiceConfig{StrictCacheAuth: true})
	ctx := context.Background()
	task := f.mustCreate(t, CreateTaskRequest{Title: "secret", DueDate: "01/10/2026", AssignedTo: "user-1"})

	if _, err := f.svc.GetTask(ctx, admin, task.ID); err != nil {
		t.Fatalf("admin read failed: %v", err)
	}
	if _, err := f.svc.GetTask(ctx, user2, task.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("want ErrForbidden on cache hit, got %v", err)
	}
	// The authorized assignee still gets the cached entry
	if _, err := f.svc.GetTask(ctx, user1, task.ID); err != nil {
		t.Errorf("assignee read failed: %v", err)
	}
}

func TestStaleReadWithoutInvalidation(t *testing.T) {
	f := newTaskServiceFixture(t, TaskServiceConfig{})
	ctx := context.Background()
	task := f.mustCreate(t, CreateTaskRequest{Title: "before", DueDate: "01/10/2026"})

	if _, err := f.svc.GetTask(ctx, admin, task.ID); err != nil {
		t.Fatalf("read failed: %v", err)
	}

	after := "after"
	if _, err := f.svc.UpdateTask(ctx, admin, task.ID, UpdateTaskRequest{Title: &after}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, err := f.svc.GetTask(ctx, admin, task.ID)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got.Title != "before" {
		t.Errorf("expected stale cached title, got %q", got.Title)
	}
}

func TestInvalidationDeletesTaskEntry(t *testing.T) {
	f := newTaskServiceFixture(t, TaskServiceConfig{Invalidation: true})
	ctx := context.Background()
	task := f.mustCreate(t, CreateTaskRequest{Title: "before", DueDate: "01/10/2026"})

	if _, err := f.svc.GetTask(ctx, admin, task.ID); err != nil {
		t.Fatalf("read failed: %v", err)
	}

	after := "after"
	if _, err := f.svc.UpdateTask(ctx, admin, task.ID, UpdateTaskRequest{Title: &after}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, err := f.svc.GetTask(ctx, admin, task.ID)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got.Title != "after" {
		t.Errorf("expected fresh title after invalidation, got %q", got.Title)
	}
}

func TestListTasksRoleScoping(t *testing.T) {
	f := newTaskServiceFixture(t, TaskServiceConfig{})
	ctx := context.Background()

	f.mustCreate(t, CreateTaskRequest{Title: "team1", DueDate: "01/10/2026", AssignedTo: "user-1"})
	f.mustCreate(t, CreateTaskRequest{Title: "team2", DueDate: "02/10/2026", AssignedTo: "user-2"})
	f.mustCreate(t, CreateTaskRequest{Title: "pool", DueDate: "03/10/2026"})

	adminTasks, err := f.svc.ListTasks(ctx, admin, ListQuery{})
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if len(adminTasks) != 3 {
		t.Errorf("admin sees %d tasks, want 3", len(adminTasks))
	}

	mgrTasks, err := f.svc.ListTasks(ctx, mgr1, ListQuery{})
	if err != nil {
		t.Fatalf("manager list: %v", err)
	}
	// Own team's task plus the unassigned pool
	if len(mgrTasks) != 2 {
		t.Errorf("manager sees %d tasks, want 2", len(mgrTasks))
	}

	userTasks, err := f.svc.ListTasks(ctx, user1, ListQuery{})
	if err != nil {
		t.Fatalf("user list: %v", err)
	}
	if len(userTasks) != 1 || userTasks[0].Title != "team1" {
		t.Errorf("user list = %+v", userTasks)
	}

	pool, err := f.svc.ListTasks(ctx, admin, ListQuery{Unassigned: true})
	if err != nil {
		t.Fatalf("unassigned list: %v", err)
	}
	if len(pool) != 1 || pool[0].Title != "pool" {
		t.Errorf("unassigned filter = %+v", pool)
	}
}

func TestListTasksFiltersAndSort(t *testing.T) {
	f := newTaskServiceFixture(t, TaskServiceConfig{})
	ctx := context.Background()

	f.mustCreate(t, CreateTaskRequest{Title: "a", DueDate: "01/10/2026", Priority: "high", Status: "pending"})
	f.mustCreate(t, CreateTaskRequest{Title: "b", DueDate: "02/10/2026", Priority: "low", Status: "completed"})
	f.mustCreate(t, CreateTaskRequest{Title: "c", DueDate: "03/10/2026", Priority: "high", Status: "in-progress"})

	highTasks, err := f.svc.ListTasks(ctx, admin, ListQuery{Priority: "high"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(highTasks) != 2 {
		t.Errorf("priority filter: got %d, want 2", len(highTasks))
	}

	done, err := f.svc.ListTasks(ctx, admin, ListQuery{Status: "completed"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(done) != 1 || done[0].Title != "b" {
		t.Errorf("status filter = %+v", done)
	}

	// Comma-separated statuses match any of the set
	set, err := f.svc.ListTasks(ctx, admin, ListQuery{Status: "pending,completed"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(set) != 2 || set[0].Title != "a" || set[1].Title != "b" {
		t.Errorf("status set filter = %+v", set)
	}

	day, err := f.svc.ListTasks(ctx, admin, ListQuery{DueDate: "02/10/2026"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(day) != 1 || day[0].Title != "b" {
		t.Errorf("due date filter = %+v", day)
	}

	desc, err := f.svc.ListTasks(ctx, admin, ListQuery{SortDesc: true})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(desc) != 3 || desc[0].Title != "c" || desc[2].Title != "a" {
		t.Errorf("descending sort = %+v", desc)
	}

	if _, err := f.svc.ListTasks(ctx, admin, ListQuery{Status: "done"}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("bad status: want ErrValidation, got %v", err)
	}
	if _, err := f.svc.ListTasks(ctx, admin, ListQuery{Status: "pending,done"}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("bad status in set: want ErrValidation, got %v", err)
	}
}

func TestListCacheServesStaleUntilGenerationBump(t *testing.T) {
	f := newTaskServiceFixture(t, TaskServiceConfig{Invalidation: true})
	ctx := context.Background()
	f.mustCreate(t, CreateTaskRequest{Title: "one", DueDate: "01/10/2026"})

	first, err := f.svc.ListTasks(ctx, admin, ListQuery{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("got %d tasks", len(first))
	}

	// Creating a second task bumps the generation, so the next list misses
	// the old entry and sees both
	f.mustCreate(t, CreateTaskRequest{Title: "two", DueDate: "02/10/2026"})

	second, err := f.svc.ListTasks(ctx, admin, ListQuery{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(second) != 2 {
		t.Errorf("after generation bump got %d tasks, want 2", len(second))
	}
}

func TestUpdateTaskFieldAsymmetry(t *testing.T) {
	f := newTaskServiceFixture(t, TaskServiceConfig{})
	ctx := context.Background()

	t.Run("manager lenient", func(t *testing.T) {
		task := f.mustCreate(t, CreateTaskRequest{Title: "orig", DueDate: "01/10/2026", AssignedTo: "user-1"})

		newTitle, newStatus := "hijacked", "in-progress"
		got, err := f.svc.UpdateTask(ctx, mgr1, task.ID, UpdateTaskRequest{Title: &newTitle, Status: &newStatus})
		if err != nil {
			t.Fatalf("manager update failed: %v", err)
		}
		if got.Title != "orig" {
			t.Errorf("title should have been dropped, got %q", got.Title)
		}
		if got.Status != domain.StatusInProgress {
			t.Errorf("status should have applied, got %s", got.Status)
		}
	})

	t.Run("user strict", func(t *testing.T) {
		task := f.mustCreate(t, CreateTaskRequest{Title: "orig", DueDate: "01/10/2026", AssignedTo: "user-1"})

		newStatus, newPriority := "completed", "high"
		if _, err := f.svc.UpdateTask(ctx, user1, task.ID, UpdateTaskRequest{Status: &newStatus, Priority: &newPriority}); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("user with extra field: want ErrForbidden, got %v", err)
		}

		got, err := f.svc.UpdateTask(ctx, user1, task.ID, UpdateTaskRequest{Status: &newStatus})
		if err != nil {
			t.Fatalf("user status update failed: %v", err)
		}
		if got.Status != domain.StatusCompleted {
			t.Errorf("status = %s", got.Status)
		}
	})
}

func TestUpdateNotificationPolicy(t *testing.T) {
	f := newTaskServiceFixture(t, TaskServiceConfig{})
	ctx := context.Background()
	task := f.mustCreate(t, CreateTaskRequest{Title: "orig", DueDate: "01/10/2026", AssignedTo: "user-1", Status: "pending"})

	// Admin no-op update still notifies
	same := "orig"
	if _, err := f.svc.UpdateTask(ctx, admin, task.ID, UpdateTaskRequest{Title: &same}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if event, ok := f.dispatcher.last(); !ok || event.Type != domain.EventTaskUpdated {
		t.Error("admin no-op update should still dispatch")
	}
	f.dispatcher.reset()

	// User writing the current value notifies nobody
	pending := "pending"
	if _, err := f.svc.UpdateTask(ctx, user1, task.ID, UpdateTaskRequest{Status: &pending}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, ok := f.dispatcher.last(); ok {
		t.Error("no-change user update should not dispatch")
	}

	// A real change does
	completed := "completed"
	if _, err := f.svc.UpdateTask(ctx, user1, task.ID, UpdateTaskRequest{Status: &completed}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if event, ok := f.dispatcher.last(); !ok || event.Type != domain.EventTaskUpdated {
		t.Error("changed user update should dispatch")
	}
}

func TestConcurrentUpdatesLastWriteWins(t *testing.T) {
	f := newTaskServiceFixture(t, TaskServiceConfig{})
	ctx := context.Background()
	task := f.mustCreate(t, CreateTaskRequest{Title: "contended", DueDate: "01/10/2026", AssignedTo: "user-1"})

	// Admin rewrites the title while the assignee flips the status. Both
	// are authorized; updates are read-modify-save with no locking, so
	// both must succeed and the task must end in a state one of them wrote.
	titles := []string{"left", "right"}
	errs := make(chan error, len(titles)+1)
	var wg sync.WaitGroup
	for _, title := range titles {
		wg.Add(1)
		go func(title string) {
			defer wg.Done()
			_, err := f.svc.UpdateTask(ctx, admin, task.ID, UpdateTaskRequest{Title: &title})
			errs <- err
		}(title)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		completed := "completed"
		_, err := f.svc.UpdateTask(ctx, user1, task.ID, UpdateTaskRequest{Status: &completed})
		errs <- err
	}()
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent update failed: %v", err)
		}
	}

	// Whole-state saves mean a writer can resurrect the value it read, so
	// any written-or-original combination is legal; corruption is not.
	got, err := f.taskRepo.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if got.Title != "contended" && got.Title != "left" && got.Title != "right" {
		t.Errorf("title = %q, want a value some writer held", got.Title)
	}
	if got.Status != domain.StatusCompleted && got.Status != domain.StatusPending {
		t.Errorf("status = %q", got.Status)
	}
	if got.AssignedTo != "user-1" || got.ManagerID != "mgr-1" {
		t.Errorf("assignment fields corrupted: %q/%q", got.AssignedTo, got.ManagerID)
	}
}

func TestAssignUnassignLifecycle(t *testing.T) {
	f := newTaskServiceFixture(t, TaskServiceConfig{})
	ctx := context.Background()
	task := f.mustCreate(t, CreateTaskRequest{Title: "work", DueDate: "01/10/2026"})

	got, err := f.svc.AssignTask(ctx, mgr1, task.ID, "user-1")
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if got.AssignedTo != "user-1" || got.ManagerID != "mgr-1" {
		t.Errorf("assignment state = %q/%q", got.AssignedTo, got.ManagerID)
	}
	if event, ok := f.dispatcher.last(); !ok || event.Type != domain.EventTaskAssigned {
		t.Error("expected assigned event")
	}

	// Reassignment without unassign is rejected, even for admins
	if _, err := f.svc.AssignTask(ctx, admin, task.ID, "user-2"); !errors.Is(err, domain.ErrAlreadyAssigned) {
		t.Errorf("want ErrAlreadyAssigned, got %v", err)
	}

	// Managers cannot reach outside their team
	unassignedTask := f.mustCreate(t, CreateTaskRequest{Title: "pool", DueDate: "02/10/2026"})
	if _, err := f.svc.AssignTask(ctx, mgr1, unassignedTask.ID, "user-2"); !errors.Is(err, domain.ErrNotOnTeam) {
		t.Errorf("want ErrNotOnTeam, got %v", err)
	}

	got, err = f.svc.UnassignTask(ctx, mgr1, task.ID)
	if err != nil {
		t.Fatalf("unassign failed: %v", err)
	}
	if got.Assigned() || got.ManagerID != "" {
		t.Errorf("task should be back in the pool, got %+v", got)
	}
	if event, ok := f.dispatcher.last(); !ok || event.Type != domain.EventTaskUnassigned {
		t.Error("expected unassigned event")
	}

	// After unassign the task can go to the other team
	if _, err := f.svc.AssignTask(ctx, admin, task.ID, "user-2"); err != nil {
		t.Fatalf("reassign after unassign failed: %v", err)
	}
}

func TestDeleteTask(t *testing.T) {
	f := newTaskServiceFixture(t, TaskServiceConfig{})
	ctx := context.Background()
	task := f.mustCreate(t, CreateTaskRequest{Title: "doomed", DueDate: "01/10/2026"})

	if err := f.svc.DeleteTask(ctx, mgr1, task.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("manager delete: want ErrForbidden, got %v", err)
	}

	if err := f.svc.DeleteTask(ctx, admin, task.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	event, ok := f.dispatcher.last()
	if !ok || event.Type != domain.EventTaskDeleted {
		t.Error("expected deleted event")
	}
	if event.Task == nil || event.Task.Title != "doomed" {
		t.Errorf("deleted event should carry the task, got %+v", event.Task)
	}

	if err := f.svc.DeleteTask(ctx, admin, task.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("double delete: want ErrNotFound, got %v", err)
	}
}

func TestAnalytics(t *testing.T) {
	f := newTaskServiceFixture(t, TaskServiceConfig{})
	ctx := context.Background()

	// Overdue: due in the past, not completed
	f.mustCreate(t, CreateTaskRequest{Title: "late", DueDate: "01/01/2020", Status: "pending", AssignedTo: "user-1"})
	f.mustCreate(t, CreateTaskRequest{Title: "done late", DueDate: "01/01/2020", Status: "completed", AssignedTo: "user-1"})
	f.mustCreate(t, CreateTaskRequest{Title: "future", DueDate: "01/10/2099", Status: "in-progress", AssignedTo: "user-2"})

	got, err := f.svc.Analytics(ctx, admin)
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if got.Total != 3 || got.Pending != 1 || got.InProgress != 1 || got.Completed != 1 {
		t.Errorf("admin analytics = %+v", got)
	}
	if got.Overdue != 1 {
		t.Errorf("overdue = %d, want 1 (completed tasks never count)", got.Overdue)
	}

	// User scope only counts their own tasks
	userStats, err := f.svc.Analytics(ctx, user1)
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if userStats.Total != 2 || userStats.Overdue != 1 {
		t.Errorf("user analytics = %+v", userStats)
	}
}
