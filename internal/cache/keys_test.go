package cache

import (
	"testing"
	"time"

	"github.com/yourorg/taskboard/internal/domain"
)

func TestListKeySeparatesScopes(t *testing.T) {
	adminKey := ListKey(0, domain.TaskFilter{}, domain.TaskSort{Field: "dueDate"})
	mgrKey := ListKey(0, domain.TaskFilter{ManagerScope: "mgr-1"}, domain.TaskSort{Field: "dueDate"})
	userKey := ListKey(0, domain.TaskFilter{AssignedTo: "user-1"}, domain.TaskSort{Field: "dueDate"})

	if adminKey == mgrKey || mgrKey == userKey || adminKey == userKey {
		t.Errorf("scoped keys must differ: %q %q %q", adminKey, mgrKey, userKey)
	}
}

func TestListKeyDeterministic(t *testing.T) {
	from := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	f := domain.TaskFilter{
		ManagerScope: "mgr-1",
		Statuses:     []domain.Status{domain.StatusPending},
		Priority:     domain.PriorityHigh,
		DueFrom:      &from,
		DueTo:        &to,
	}
	s := domain.TaskSort{Field: "dueDate", Desc: true}

	if ListKey(3, f, s) != ListKey(3, f, s) {
		t.Error("same inputs must derive the same key")
	}
	if ListKey(3, f, s) == ListKey(4, f, s) {
		t.Error("generation must be part of the key")
	}
}

func TestKeyNamespaces(t *testing.T) {
	if got := TaskKey("t1"); got != "task:t1" {
		t.Errorf("TaskKey = %q", got)
	}
	if got := ProfileKey("u1"); got != "profile:u1" {
		t.Errorf("ProfileKey = %q", got)
	}
	if ProfileKey("u1") == ProfileQueryKey("u1", domain.UserFilter{}, true) {
		t.Error("single and query profile keys must differ")
	}
}

func TestProfileQueryKeySeparatesQueries(t *testing.T) {
	yes := true
	plain := ProfileQueryKey("admin-1", domain.UserFilter{}, true)
	roles := ProfileQueryKey("admin-1", domain.UserFilter{Roles: []domain.Role{domain.RoleUser}}, true)
	managed := ProfileQueryKey("admin-1", domain.UserFilter{HasManager: &yes}, true)
	desc := ProfileQueryKey("admin-1", domain.UserFilter{}, false)

	keys := []string{plain, roles, managed, desc}
	for i := range keys {
		for j := i + 1; j < len(keys); j++ {
			if keys[i] == keys[j] {
				t.Errorf("keys must differ: %q", keys[i])
			}
		}
	}

	if plain != ProfileQueryKey("admin-1", domain.UserFilter{}, true) {
		t.Error("same query must derive the same key")
	}
}
