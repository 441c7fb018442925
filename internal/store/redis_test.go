package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func testRedisStore(t *testing.T, mr *miniredis.Miniredis, namespace string) *RedisStore {
	t.Helper()
	st, err := NewRedisStore(context.Background(), RedisOptions{Addr: mr.Addr()}, namespace, testLogger())
	if err != nil {
		t.Fatalf("open redis store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestRedisStore_KeysArePrefixed(t *testing.T) {
	mr := miniredis.RunT(t)
	st := testRedisStore(t, mr, "default")
	ctx := context.Background()

	if err := st.SetAll(ctx, map[string]string{"authToken": "tok", "currentUser": "{}"}); err != nil {
		t.Fatalf("SetAll: %v", err)
	}
	if got, err := mr.Get("linkshort:default:authToken"); err != nil || got != "tok" {
		t.Errorf("raw authToken = %q, %v", got, err)
	}
	if mr.Exists("authToken") {
		t.Error("unprefixed key written")
	}

	if err := st.Delete(ctx, "authToken", "currentUser"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if keys := mr.Keys(); len(keys) != 0 {
		t.Errorf("keys after Delete = %v", keys)
	}
}

func TestRedisStore_NamespacesAreIsolated(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	prod := testRedisStore(t, mr, "prod")
	staging := testRedisStore(t, mr, "staging")

	if err := prod.SetAll(ctx, map[string]string{"authToken": "prod-token"}); err != nil {
		t.Fatalf("SetAll: %v", err)
	}
	if _, ok, _ := staging.Get(ctx, "authToken"); ok {
		t.Error("staging namespace should not see prod token")
	}

	if err := staging.Delete(ctx, "authToken"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if v, ok, _ := prod.Get(ctx, "authToken"); !ok || v != "prod-token" {
		t.Errorf("prod token after staging delete = %q, %v", v, ok)
	}
}

func TestRedisStore_ServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	st := testRedisStore(t, mr, "default")
	mr.Close()

	if _, _, err := st.Get(context.Background(), "authToken"); err == nil {
		t.Error("Get against stopped server should fail, not report absent")
	}
}

func TestOpen_RedisUnreachable(t *testing.T) {
	_, err := Open(context.Background(), Options{Backend: "redis", Redis: RedisOptions{Addr: "127.0.0.1:1"}}, testLogger())
	if err == nil {
		t.Fatal("expected connection error")
	}
}
