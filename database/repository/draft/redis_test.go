package draftRepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"pmove/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/fortytw2/leaktest"
	"github.com/go-redis/redis/v8"
)

func newTestRepo(t *testing.T) (DraftRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisDraftRepo(client, time.Minute, 30*time.Second), mr
}

func TestRedisDraftRepo(t *testing.T) {
	ctx := context.Background()

	t.Run("should round trip a draft", func(t *testing.T) {
		repo, mr := newTestRepo(t)

		err := repo.Create(ctx, models.Draft{ID: "d1", SessionID: "s1", Step: models.StepLookup})
		if err != nil {
			t.Fatal(err)
		}
		got, err := repo.Get(ctx, "d1")
		if err != nil {
			t.Fatal(err)
		}
		if got.SessionID != "s1" || got.Step != models.StepLookup {
			t.Errorf("got `%+v`, want session `s1` at step `lookup`", got)
		}
		if ttl := mr.TTL("draft:d1"); ttl != time.Minute {
			t.Errorf("got `%v`, want `%v` for ttl", ttl, time.Minute)
		}
	})

	t.Run("should report a missing draft", func(t *testing.T) {
		repo, _ := newTestRepo(t)

		if _, err := repo.Get(ctx, "nope"); !errors.Is(err, ErrDraftNotFound) {
			t.Errorf("got `%v`, want `%v`", err, ErrDraftNotFound)
		}
		_, err := repo.Update(ctx, "nope", func(d models.Draft) (models.Draft, error) { return d, nil })
		if !errors.Is(err, ErrDraftNotFound) {
			t.Errorf("got `%v`, want `%v`", err, ErrDraftNotFound)
		}
	})

	t.Run("should expire drafts after the ttl", func(t *testing.T) {
		repo, mr := newTestRepo(t)

		if err := repo.Create(ctx, models.Draft{ID: "d1"}); err != nil {
			t.Fatal(err)
		}
		mr.FastForward(2 * time.Minute)
		if _, err := repo.Get(ctx, "d1"); !errors.Is(err, ErrDraftNotFound) {
			t.Errorf("got `%v`, want `%v`", err, ErrDraftNotFound)
		}
	})

	t.Run("should refuse to overwrite an existing draft on create", func(t *testing.T) {
		repo, _ := newTestRepo(t)

		if err := repo.Create(ctx, models.Draft{ID: "d1"}); err != nil {
			t.Fatal(err)
		}
		if err := repo.Create(ctx, models.Draft{ID: "d1"}); err == nil {
			t.Error("got nil error, want a duplicate error")
		}
	})

	t.Run("should apply updates and keep identity fields", func(t *testing.T) {
		repo, _ := newTestRepo(t)

		if err := repo.Create(ctx, models.Draft{ID: "d1", SessionID: "s1"}); err != nil {
			t.Fatal(err)
		}
		got, err := repo.Update(ctx, "d1", func(d models.Draft) (models.Draft, error) {
			d.Step = models.StepAssistance
			d.SessionID = "someone-else"
			d.Generation++
			return d, nil
		})
		if err != nil {
			t.Fatal(err)
		}
		if got.SessionID != "s1" {
			t.Errorf("got `%s`, want `%s` for session", got.SessionID, "s1")
		}

		stored, err := repo.Get(ctx, "d1")
		if err != nil {
			t.Fatal(err)
		}
		if stored.Step != models.StepAssistance || stored.Generation != 1 {
			t.Errorf("got `%s`/`%d`, want `assistance`/`1`", stored.Step, stored.Generation)
		}
	})

	t.Run("should leave the stored bytes alone when the update fails", func(t *testing.T) {
		repo, mr := newTestRepo(t)

		if err := repo.Create(ctx, models.Draft{ID: "d1", Step: models.StepFinalization}); err != nil {
			t.Fatal(err)
		}
		before, _ := mr.Get("draft:d1")

		boom := errors.New("boom")
		_, err := repo.Update(ctx, "d1", func(d models.Draft) (models.Draft, error) {
			d.Step = models.StepConfirmed
			return d, boom
		})
		if !errors.Is(err, boom) {
			t.Errorf("got `%v`, want `%v`", err, boom)
		}
		after, _ := mr.Get("draft:d1")
		if before != after {
			t.Errorf("got `%s`, want `%s`", after, before)
		}
	})

	t.Run("should delete the draft", func(t *testing.T) {
		repo, mr := newTestRepo(t)

		if err := repo.Create(ctx, models.Draft{ID: "d1"}); err != nil {
			t.Fatal(err)
		}
		if err := repo.Delete(ctx, "d1"); err != nil {
			t.Fatal(err)
		}
		if mr.Exists("draft:d1") {
			t.Error("draft key still exists after delete")
		}
	})
}

func TestRedisDraftRepoLock(t *testing.T) {
	defer leaktest.Check(t)()

	mr := miniredis.NewMiniRedis()
	if err := mr.Start(); err != nil {
		t.Fatal(err)
	}
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	repo := NewRedisDraftRepo(client, time.Minute, 45*time.Second)
	ctx := context.Background()

	unlock, err := repo.Lock(ctx, "d1")
	if err != nil {
		t.Fatal(err)
	}

	t.Run("should expire the lock after the configured lifetime", func(t *testing.T) {
		if got := mr.TTL("draftlock:d1"); got != 45*time.Second {
			t.Errorf("got `%v`, want `%v`", got, 45*time.Second)
		}
	})

	t.Run("should refuse a second lock while held", func(t *testing.T) {
		if _, err := repo.Lock(ctx, "d1"); !errors.Is(err, ErrDraftLocked) {
			t.Errorf("got `%v`, want `%v`", err, ErrDraftLocked)
		}
	})

	t.Run("should not release a lock taken by someone else", func(t *testing.T) {
		mr.Set("draftlock:d1", "other-token")
		unlock()
		if !mr.Exists("draftlock:d1") {
			t.Error("foreign lock was released")
		}
		mr.Del("draftlock:d1")
	})

	t.Run("should lock again once released", func(t *testing.T) {
		again, err := repo.Lock(ctx, "d1")
		if err != nil {
			t.Fatal(err)
		}
		again()
		if mr.Exists("draftlock:d1") {
			t.Error("lock still held after unlock")
		}
	})
}
