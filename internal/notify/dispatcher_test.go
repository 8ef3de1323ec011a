package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/yourorg/taskboard/internal/domain"
)

type fakeBroadcaster struct {
	events []domain.Event
}

func (f *fakeBroadcaster) Broadcast(event domain.Event) {
	f.events = append(f.events, event)
}

type fakeEmailSender struct {
	sent []sentEmail
	fail bool
}

type sentEmail struct {
	to      string
	subject string
	body    string
}

func (f *fakeEmailSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	if f.fail {
		return errors.New("smtp down")
	}
	f.sent = append(f.sent, sentEmail{to: to, subject: subject, body: htmlBody})
	return nil
}

type fakeUserRepo struct {
	users map[string]*domain.User
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error { return nil }
func (f *fakeUserRepo) Update(ctx context.Context, u *domain.User) error { return nil }
func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, domain.ErrNotFound
}
func (f *fakeUserRepo) Find(ctx context.Context, filter domain.UserFilter, sortAsc bool) ([]*domain.User, error) {
	return nil, nil
}
func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
}

func fixture() (*Dispatcher, *fakeBroadcaster, *fakeEmailSender) {
	broadcaster := &fakeBroadcaster{}
	emailSender := &fakeEmailSender{}
	userRepo := &fakeUserRepo{users: map[string]*domain.User{
		"user-1": {ID: "user-1", Email: "uma@example.com"},
		"user-2": {ID: "user-2", Email: ""},
	}}
	return NewDispatcher(broadcaster, emailSender, userRepo, nil), broadcaster, emailSender
}

func assignedTask() *domain.Task {
	return &domain.Task{
		ID:          "t1",
		Title:       "write report",
		Description: "quarterly numbers",
		DueDate:     time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		Status:      domain.StatusPending,
		AssignedTo:  "user-1",
	}
}

func TestDispatchBroadcastsAndEmailsAssignee(t *testing.T) {
	d, broadcaster, emailSender := fixture()

	d.Dispatch(context.Background(), domain.Event{Type: domain.EventTaskAssigned, Task: assignedTask()})

	if len(broadcaster.events) != 1 {
		t.Fatalf("broadcast count = %d", len(broadcaster.events))
	}
	if len(emailSender.sent) != 1 {
		t.Fatalf("email count = %d", len(emailSender.sent))
	}
	mail := emailSender.sent[0]
	if mail.to != "uma@example.com" || mail.subject != "New Task Assigned" {
		t.Errorf("mail = %+v", mail)
	}
	// Due date rendered in the DD/MM/YYYY input form
	if want := "15/09/2026"; !strings.Contains(mail.body, want) {
		t.Errorf("body missing %q: %s", want, mail.body)
	}
}

func TestDispatchUpdateSubject(t *testing.T) {
	d, _, emailSender := fixture()

	d.Dispatch(context.Background(), domain.Event{Type: domain.EventTaskUpdated, Task: assignedTask()})

	if len(emailSender.sent) != 1 || emailSender.sent[0].subject != "Task Updated" {
		t.Errorf("sent = %+v", emailSender.sent)
	}
}

func TestDispatchSkipsEmailWithoutAssignee(t *testing.T) {
	d, broadcaster, emailSender := fixture()

	unassigned := assignedTask()
	unassigned.AssignedTo = ""
	d.Dispatch(context.Background(), domain.Event{Type: domain.EventTaskUnassigned, Task: unassigned})
	d.Dispatch(context.Background(), domain.Event{Type: domain.EventTaskDeleted, Task: unassigned})

	if len(broadcaster.events) != 2 {
		t.Errorf("broadcast count = %d", len(broadcaster.events))
	}
	if len(emailSender.sent) != 0 {
		t.Errorf("no emails expected, got %+v", emailSender.sent)
	}
}

func TestDispatchSkipsEmailForBlankAddress(t *testing.T) {
	d, _, emailSender := fixture()

	task := assignedTask()
	task.AssignedTo = "user-2"
	d.Dispatch(context.Background(), domain.Event{Type: domain.EventTaskAssigned, Task: task})

	if len(emailSender.sent) != 0 {
		t.Errorf("no emails expected, got %+v", emailSender.sent)
	}
}

func TestEmailFailureDoesNotReachCaller(t *testing.T) {
	d, broadcaster, emailSender := fixture()
	emailSender.fail = true

	// Must not panic or propagate; the mutation already committed
	d.Dispatch(context.Background(), domain.Event{Type: domain.EventTaskAssigned, Task: assignedTask()})

	if len(broadcaster.events) != 1 {
		t.Errorf("broadcast should succeed independently, got %d", len(broadcaster.events))
	}
}

func TestLookupFailureSwallowed(t *testing.T) {
	d, broadcaster, _ := fixture()

	task := assignedTask()
	task.AssignedTo = "ghost"
	d.Dispatch(context.Background(), domain.Event{Type: domain.EventTaskAssigned, Task: task})

	if len(broadcaster.events) != 1 {
		t.Errorf("broadcast should still happen, got %d", len(broadcaster.events))
	}
}
