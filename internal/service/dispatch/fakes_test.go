package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dhinakarr/realtors-app-sub001/internal/model"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
	roles map[model.Role][]uuid.UUID
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users: make(map[uuid.UUID]*model.User),
		roles: make(map[model.Role][]uuid.UUID),
	}
}

func (r *fakeUserRepo) addUser(name, email string, createdAt time.Time, roles ...model.Role) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.New()
	r.users[id] = &model.User{
		ID: id, Name: name, Email: email, Active: true, CreatedAt: createdAt,
	}
	for _, role := range roles {
		r.roles[role] = append(r.roles[role], id)
	}
	return id
}

func (r *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user not found")
	}
	return u, nil
}

func (r *fakeUserRepo) FindActiveByRole(_ context.Context, role model.Role) ([]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.User
	for _, id := range r.roles[role] {
		if u := r.users[id]; u != nil && u.Active {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type fakeDeviceRepo struct {
	mu      sync.Mutex
	byToken map[string]*model.DeviceToken
}

func newFakeDeviceRepo() *fakeDeviceRepo {
	return &fakeDeviceRepo{byToken: make(map[string]*model.DeviceToken)}
}

func (r *fakeDeviceRepo) Upsert(_ context.Context, t *model.DeviceToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byToken[t.Token]; ok {
		existing.Active = true
		existing.UserID = t.UserID
		existing.Platform = t.Platform
		existing.LastUsedAt = time.Now()
		return nil
	}
	stored := *t
	stored.Active = true
	stored.LastUsedAt = time.Now()
	stored.CreatedAt = time.Now()
	r.byToken[t.Token] = &stored
	return nil
}

func (r *fakeDeviceRepo) FindActiveByUser(_ context.Context, userID uuid.UUID) ([]*model.DeviceToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.DeviceToken
	for _, t := range r.byToken {
		if t.UserID == userID && t.Active {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastUsedAt.After(out[j].LastUsedAt) })
	return out, nil
}

func (r *fakeDeviceRepo) Deactivate(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.byToken[token]; ok {
		t.Active = false
	}
	return nil
}

func (r *fakeDeviceRepo) activeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.byToken {
		if t.Active {
			n++
		}
	}
	return n
}

type fakeNotificationRepo struct {
	mu   sync.Mutex
	rows []*model.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *n
	r.rows = append(r.rows, &stored)
	return nil
}

func (r *fakeNotificationRepo) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]*model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Notification
	for _, n := range r.rows {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.rows {
		if n.ID == id && n.UserID == userID {
			n.Read = true
			return nil
		}
	}
	return fmt.Errorf("notification not found")
}

func (r *fakeNotificationRepo) UnreadCount(_ context.Context, userID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, n := range r.rows {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) byStatus(status model.DeliveryStatus) []*model.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Notification
	for _, n := range r.rows {
		if n.Status == status {
			out = append(out, n)
		}
	}
	return out
}

func (r *fakeNotificationRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

var errUnregisteredToken = errors.New("registration-token-not-registered")

type pushCall struct {
	token string
	title string
	body  string
	data  map[string]string
}

type fakePushProvider struct {
	mu     sync.Mutex
	calls  []pushCall
	failOn func(call int, token string) error
}

func (p *fakePushProvider) Send(_ context.Context, token, title, body string, data map[string]string) (string, error) {
	p.mu.Lock()
	n := len(p.calls)
	p.calls = append(p.calls, pushCall{token: token, title: title, body: body, data: data})
	failOn := p.failOn
	p.mu.Unlock()

	if failOn != nil {
		if err := failOn(n, token); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("msg-%d", n), nil
}

func (p *fakePushProvider) IsTokenInvalid(err error) bool {
	return errors.Is(err, errUnregisteredToken)
}

func (p *fakePushProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func (p *fakePushProvider) call(i int) pushCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[i]
}

type emailCall struct {
	to      string
	subject string
	html    string
}

type fakeTransport struct {
	mu      sync.Mutex
	calls   []emailCall
	failErr error
}

func (t *fakeTransport) SendHTML(to, subject, html string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, emailCall{to: to, subject: subject, html: html})
	return t.failErr
}

func (t *fakeTransport) callCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.calls)
}

func (t *fakeTransport) call(i int) emailCall {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls[i]
}

type stubRenderer struct {
	failErr error
}

func (r *stubRenderer) Render(name string, data map[string]string) (string, error) {
	if r.failErr != nil {
		return "", r.failErr
	}
	return "<html>" + name + ":" + data["plotNumber"] + "</html>", nil
}
