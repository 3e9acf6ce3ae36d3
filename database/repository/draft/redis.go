package draftRepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pmove/models"
	"pmove/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Deletes the lock only if it still holds our token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func draftKey(id string) string { return utils.DraftPrefix + id }

func lockKey(id string) string { return utils.DraftLockPrefix + id }

// Create stores a new draft. It fails if a draft with the same ID exists.
func (r *redisDraftRepo) Create(ctx context.Context, draft models.Draft) error {
	now := time.Now().UTC()
	draft.CreatedAt = now
	draft.UpdatedAt = now

	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}
	ok, err := r.client.SetNX(ctx, draftKey(draft.ID), data, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to store draft: %w", err)
	}
	if !ok {
		return fmt.Errorf("draft %s already exists", draft.ID)
	}
	return nil
}

// Get loads a draft by ID.
func (r *redisDraftRepo) Get(ctx context.Context, id string) (models.Draft, error) {
	raw, err := r.client.Get(ctx, draftKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Draft{}, ErrDraftNotFound
	}
	if err != nil {
		return models.Draft{}, fmt.Errorf("failed to load draft: %w", err)
	}
	return decodeDraft(raw)
}

// Update runs fn against the stored draft inside WATCH/MULTI and retries
// when another writer got in first.
func (r *redisDraftRepo) Update(ctx context.Context, id string, fn UpdateFunc) (models.Draft, error) {
	key := draftKey(id)
	var updated models.Draft

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrDraftNotFound
		}
		if err != nil {
			return err
		}
		current, err := decodeDraft(raw)
		if err != nil {
			return err
		}

		next, err := fn(current)
		if err != nil {
			return err
		}
		next.ID = current.ID
		next.SessionID = current.SessionID
		next.CreatedAt = current.CreatedAt
		next.UpdatedAt = time.Now().UTC()

		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("failed to marshal draft: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		updated = next
		return nil
	}

	for attempt := 0; attempt < r.maxRetries; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return models.Draft{}, err
		}
		return updated, nil
	}
	return models.Draft{}, ErrConflict
}

// Delete removes the draft and any lock left on it.
func (r *redisDraftRepo) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, draftKey(id), lockKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}

func (r *redisDraftRepo) Lock(ctx context.Context, id string) (func(), error) {
	token := uuid.NewString()
	key := lockKey(id)
	ok, err := r.client.SetNX(ctx, key, token, r.lockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to lock draft: %w", err)
	}
	if !ok {
		return nil, ErrDraftLocked
	}
	return func() {
		// The request context may already be cancelled here.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = unlockScript.Run(ctx, r.client, []string{key}, token).Err()
	}, nil
}

func decodeDraft(raw []byte) (models.Draft, error) {
	var d models.Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return models.Draft{}, fmt.Errorf("failed to parse draft: %w", err)
	}
	return d, nil
}
