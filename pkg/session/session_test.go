package session

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/dmitrymomot/swallow/pkg/cache"
)

func TestSession_New(t *testing.T) {
	sess := New("test-id", "test-token", time.Now().Add(24*time.Hour))

	if sess.ID != "test-id" || sess.Token != "test-token" {
		t.Errorf("ID/Token = %q/%q", sess.ID, sess.Token)
	}
	if !sess.IsNew() {
		t.Error("IsNew() = false, want true")
	}
	if sess.IsDirty() {
		t.Error("new session must stay clean until written")
	}
	if sess.Values == nil {
		t.Error("Values is nil")
	}
}

func TestSession_Values(t *testing.T) {
	sess := New("id", "token", time.Now().Add(time.Hour))

	sess.SetValue("b", "2")
	sess.SetValue("a", "1")
	if !sess.IsDirty() {
		t.Error("SetValue should mark session as dirty")
	}
	if got := sess.Keys(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Keys() = %v", got)
	}

	sess.ClearDirty()
	sess.DeleteValue("missing")
	if sess.IsDirty() {
		t.Error("deleting a missing key must not mark dirty")
	}
	sess.DeleteValue("a")
	if !sess.IsDirty() {
		t.Error("DeleteValue should mark session as dirty")
	}
	if _, ok := sess.GetValue("a"); ok {
		t.Error("GetValue returned ok=true after DeleteValue")
	}
}

func TestSession_IsAuthenticated(t *testing.T) {
	sess := New("id", "token", time.Now().Add(time.Hour))
	if sess.IsAuthenticated() {
		t.Error("anonymous session reported as authenticated")
	}

	userID := "1453"
	sess.UserID = &userID
	if !sess.IsAuthenticated() {
		t.Error("IsAuthenticated() = false after setting UserID")
	}
}

func TestValue_TypedHelper(t *testing.T) {
	sess := New("id", "token", time.Now().Add(time.Hour))
	sess.SetValue("name", "swallow")

	if v, err := Value[string](sess, "name"); err != nil || v != "swallow" {
		t.Errorf("Value[string] = %q, %v", v, err)
	}
	if _, err := Value[int](sess, "name"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Value[int] on a string = %v", err)
	}
	if _, err := Value[string](nil, "name"); !errors.Is(err, ErrNotFound) {
		t.Errorf("nil session error = %v", err)
	}
	if v := ValueOr(sess, "missing", "fallback"); v != "fallback" {
		t.Errorf("ValueOr = %q", v)
	}
}

func TestContext(t *testing.T) {
	if _, err := FromContext(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("FromContext on empty ctx = %v", err)
	}

	sess := New("id", "token", time.Now().Add(time.Hour))
	got, err := FromContext(WithContext(context.Background(), sess))
	if err != nil || got != sess {
		t.Errorf("FromContext = %v, %v", got, err)
	}
}

func TestCacheStore(t *testing.T) {
	c := cache.NewMemory[Session](cache.WithCleanupInterval(0))
	defer c.Close()

	store := NewCacheStore(c)
	ctx := context.Background()

	sess := New("id", "token", time.Now().Add(time.Hour))
	sess.SetValue("greeting", "hello")
	if err := store.Create(ctx, sess); err != nil {
		t.Fatalf("Create: %v", err)
	}

	loaded, err := store.Get(ctx, "token")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if loaded.ID != "id" || ValueOr(loaded, "greeting", "") != "hello" {
		t.Errorf("loaded session = %+v", loaded)
	}
	if loaded.IsNew() || loaded.IsDirty() {
		t.Error("loaded session must be clean and not new")
	}

	loaded.SetValue("greeting", "bye")
	if err := store.Update(ctx, loaded); err != nil {
		t.Fatalf("Update: %v", err)
	}
	again, _ := store.Get(ctx, "token")
	if ValueOr(again, "greeting", "") != "bye" {
		t.Error("Update was not persisted")
	}

	if err := store.Delete(ctx, "token"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, "token"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Delete = %v", err)
	}
	if _, err := store.Get(ctx, ""); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Get empty token = %v", err)
	}
}
