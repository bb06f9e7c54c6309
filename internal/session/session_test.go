package session

import (
	"context"
	"testing"
	"time"
)

func TestTokenMaker_RoundTrip(t *testing.T) {
	tm := NewTokenMaker("test-secret")

	token, err := tm.Issue("s_abc", time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	sid, err := tm.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sid != "s_abc" {
		t.Fatalf("sid=%q", sid)
	}
}

func TestTokenMaker_RejectsBadTokens(t *testing.T) {
	tm := NewTokenMaker("test-secret")

	token, err := tm.Issue("s_abc", time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := NewTokenMaker("other-secret").Parse(token); err == nil {
		t.Fatalf("foreign signature accepted")
	}
	if _, err := tm.Parse(token + "x"); err == nil {
		t.Fatalf("tampered token accepted")
	}
	if _, err := tm.Parse("not-a-token"); err == nil {
		t.Fatalf("garbage accepted")
	}

	expired, err := tm.Issue("s_abc", -time.Minute)
	if err != nil {
		t.Fatalf("issue expired: %v", err)
	}
	if _, err := tm.Parse(expired); err == nil {
		t.Fatalf("expired token accepted")
	}
}

func TestMemStore_CopiesOnGetAndPut(t *testing.T) {
	st := NewMemStore()
	ctx := context.Background()

	sess := New()
	sess.Cart[1] = 2
	if err := st.Put(ctx, sess); err != nil {
		t.Fatalf("put: %v", err)
	}

	// Mutating the caller's copy must not leak into the store.
	sess.Cart[1] = 99

	got, ok, err := st.Get(ctx, sess.ID)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.Cart[1] != 2 {
		t.Fatalf("cart=%v want qty 2", got.Cart)
	}

	got.Cart[1] = 50
	again, _, _ := st.Get(ctx, sess.ID)
	if again.Cart[1] != 2 {
		t.Fatalf("stored session mutated through Get result")
	}
}

func TestMemStore_Delete(t *testing.T) {
	st := NewMemStore()
	ctx := context.Background()

	sess := New()
	if err := st.Put(ctx, sess); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := st.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	_, ok, err := st.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatalf("session survived delete")
	}
}

func TestSession_FlashAndClear(t *testing.T) {
	sess := New()

	sess.Flash("one")
	sess.Flash("two")

	got := sess.DrainNotices()
	if len(got) != 2 || got[0] != "one" || got[1] != "two" {
		t.Fatalf("notices=%v", got)
	}
	if n := sess.DrainNotices(); len(n) != 0 {
		t.Fatalf("second drain=%v", n)
	}

	sess.User = "alice"
	sess.Role = "customer"
	sess.Cart[3] = 1
	sess.Flash("pending")

	sess.Clear()
	if sess.LoggedIn() || len(sess.Cart) != 0 || len(sess.Notices) != 0 {
		t.Fatalf("clear left state: %+v", sess)
	}
	if sess.ID == "" {
		t.Fatalf("clear dropped the id")
	}
}
