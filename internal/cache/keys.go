package cache

import (
	"fmt"
	"strings"

	"github.com/yourorg/taskboard/internal/domain"
)

// Key namespaces. List keys embed a generation counter so that bumping the
// counter orphans every list-shaped entry without scanning keys; with
// invalidation disabled the generation stays at zero and list entries live
// out their TTL.
const (
	taskKeyPrefix    = "task:"
	listKeyPrefix    = "tasks:"
	profileKeyPrefix = "profile:"
	GenerationKey    = "tasks:gen"
)

// TaskKey is the cache key for a single task
func TaskKey(taskID string) string {
	return taskKeyPrefix + taskID
}

// ProfileKey is the cache key for a single profile lookup
func ProfileKey(userID string) string {
	return profileKeyPrefix + userID
}

// ProfileQueryKey is the cache key for an actor's profile listing. The
// resolved filter and sort direction are serialized into the key so a
// filtered query never serves another query's entry.
func ProfileQueryKey(actorID string, f domain.UserFilter, sortAsc bool) string {
	roles := make([]string, len(f.Roles))
	for i, r := range f.Roles {
		roles[i] = string(r)
	}
	hasManager := "any"
	if f.HasManager != nil {
		hasManager = fmt.Sprintf("%t", *f.HasManager)
	}
	return fmt.Sprintf("%s%s:id=%s;team=%s;roles=%s;hasManager=%s;asc=%t",
		profileKeyPrefix, actorID, f.ID, f.ManagerID,
		strings.Join(roles, ","), hasManager, sortAsc)
}

// ListKey deterministically serializes the resolved filter predicate and
// sort specification. The role scope is part of the filter, so different
// actors naturally get different entries for "the same" logical query.
func ListKey(generation int64, f domain.TaskFilter, s domain.TaskSort) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%sg%d:", listKeyPrefix, generation)
	fmt.Fprintf(&b, "assigned=%s;scope=%s;unassigned=%t;", f.AssignedTo, f.ManagerScope, f.Unassigned)
	statuses := make([]string, len(f.Statuses))
	for i, st := range f.Statuses {
		statuses[i] = string(st)
	}
	fmt.Fprintf(&b, "status=%s;priority=%s;", strings.Join(statuses, ","), f.Priority)
	if f.DueFrom != nil && f.DueTo != nil {
		fmt.Fprintf(&b, "due=%d-%d;", f.DueFrom.Unix(), f.DueTo.Unix())
	}
	fmt.Fprintf(&b, "sort=%s:desc=%t", s.Field, s.Desc)
	return b.String()
}
