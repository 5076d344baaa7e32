package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/dhinakarr/realtors-app-sub001/internal/model"
	"github.com/dhinakarr/realtors-app-sub001/internal/repository"
	apperrors "github.com/dhinakarr/realtors-app-sub001/pkg/errors"
)

// Builder turns one domain event into the dispatch instructions for every
// stakeholder the event concerns. Builders fail fast: any missing payload
// field or unresolvable stakeholder aborts the whole build with no partial
// instruction list.
type Builder interface {
	Build(ctx context.Context, event *model.DomainEvent) ([]*model.DispatchInstruction, error)
}

// RecipientResolver resolves stakeholder identities to delivery profiles.
// Lookups are cached briefly so an event burst does not hammer the users
// table.
type RecipientResolver struct {
	users repository.UserRepository
	cache *gocache.Cache
}

func NewRecipientResolver(users repository.UserRepository) *RecipientResolver {
	return &RecipientResolver{
		users: users,
		cache: gocache.New(time.Minute, 5*time.Minute),
	}
}

// Recipient resolves a specific user id to its delivery profile.
func (r *RecipientResolver) Recipient(ctx context.Context, userID uuid.UUID) (model.Recipient, error) {
	key := "user:" + userID.String()
	if cached, ok := r.cache.Get(key); ok {
		return cached.(model.Recipient), nil
	}

	user, err := r.users.Get(ctx, userID)
	if err != nil {
		return model.Recipient{}, fmt.Errorf("failed to resolve recipient %s: %w", userID, err)
	}

	rec := model.Recipient{UserID: user.ID, Name: user.Name, Email: user.Email}
	r.cache.SetDefault(key, rec)
	return rec, nil
}

// FirstWithRole resolves the earliest-created active holder of a role. A
// role with no active holder is a staffing configuration defect and fails
// loudly rather than silently dropping the stakeholder.
func (r *RecipientResolver) FirstWithRole(ctx context.Context, role model.Role) (model.Recipient, error) {
	key := "role:" + string(role)
	if cached, ok := r.cache.Get(key); ok {
		return cached.(model.Recipient), nil
	}

	users, err := r.users.FindActiveByRole(ctx, role)
	if err != nil {
		return model.Recipient{}, fmt.Errorf("failed to resolve role %s: %w", role, err)
	}
	if len(users) == 0 {
		return model.Recipient{}, apperrors.NoRoleHolder(string(role))
	}

	u := users[0]
	rec := model.Recipient{UserID: u.ID, Name: u.Name, Email: u.Email}
	r.cache.SetDefault(key, rec)
	return rec, nil
}
