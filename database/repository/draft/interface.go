package draftRepo

import (
	"context"
	"errors"
	"time"

	"pmove/models"

	"github.com/go-redis/redis/v8"
)

var (
	ErrDraftNotFound = errors.New("reservation draft not found or expired")
	ErrDraftLocked   = errors.New("reservation draft is busy with another request")
	ErrConflict      = errors.New("reservation draft kept changing during update")
)

// UpdateFunc derives the next draft from the stored one. Returning an error
// aborts the update and leaves the stored draft untouched.
type UpdateFunc func(current models.Draft) (models.Draft, error)

type DraftRepository interface {
	Create(ctx context.Context, draft models.Draft) error
	Get(ctx context.Context, id string) (models.Draft, error)
	Update(ctx context.Context, id string, fn UpdateFunc) (models.Draft, error)
	Delete(ctx context.Context, id string) error
	// Lock marks the draft as having a network call in flight. The returned
	// func releases the lock and is safe to call once.
	Lock(ctx context.Context, id string) (unlock func(), err error)
}

type redisDraftRepo struct {
	client     *redis.Client
	ttl        time.Duration
	lockTTL    time.Duration
	maxRetries int
}

// NewRedisDraftRepo stores drafts as JSON documents that expire after ttl
// without activity. lockTTL must outlive the slowest call made under Lock.
func NewRedisDraftRepo(client *redis.Client, ttl, lockTTL time.Duration) DraftRepository {
	return &redisDraftRepo{
		client:     client,
		ttl:        ttl,
		lockTTL:    lockTTL,
		maxRetries: 5,
	}
}
