package session

import (
	"context"
	"testing"

	"github.com/Maxservais/chat/internal/db"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestAppendAndHistory(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.AppendMessage(ctx, "s1", TextMessage("m1", RoleUser, "hello")); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	if err := store.AppendMessage(ctx, "s1", TextMessage("m2", RoleAssistant, "hi there")); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}

	history, err := store.History(ctx, "s1")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history))
	}
	if history[0].ID != "m1" || history[1].ID != "m2" {
		t.Errorf("history out of order: %s, %s", history[0].ID, history[1].ID)
	}
	if history[0].Parts[0].Text != "hello" {
		t.Errorf("unexpected part: %+v", history[0].Parts[0])
	}
}

func TestAppendDuplicateIDFails(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.AppendMessage(ctx, "s1", TextMessage("m1", RoleUser, "a")); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	if err := store.AppendMessage(ctx, "s1", TextMessage("m1", RoleUser, "b")); err == nil {
		t.Error("expected error on duplicate ID via AppendMessage")
	}
}

func TestAppendIfAbsentDeduplicates(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	msg := TextMessage("profile-vitalik", RoleAssistant, "Analysis done.")

	inserted, err := store.AppendMessageIfAbsent(ctx, "s1", msg)
	if err != nil {
		t.Fatalf("AppendMessageIfAbsent: %v", err)
	}
	if !inserted {
		t.Fatal("expected first append to insert")
	}

	// Duplicate delivery of the same completion.
	inserted, err = store.AppendMessageIfAbsent(ctx, "s1", msg)
	if err != nil {
		t.Fatalf("AppendMessageIfAbsent (dup): %v", err)
	}
	if inserted {
		t.Error("expected duplicate append to be skipped")
	}

	history, _ := store.History(ctx, "s1")
	if len(history) != 1 {
		t.Errorf("expected exactly 1 message, got %d", len(history))
	}
}

func TestMessageIDsScopedPerSession(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if _, err := store.AppendMessageIfAbsent(ctx, "s1", TextMessage("profile-x", RoleAssistant, "a")); err != nil {
		t.Fatal(err)
	}
	inserted, err := store.AppendMessageIfAbsent(ctx, "s2", TextMessage("profile-x", RoleAssistant, "b"))
	if err != nil {
		t.Fatal(err)
	}
	if !inserted {
		t.Error("same ID in a different session should insert")
	}
}

func TestClearTruncatesMessagesAndProfile(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	store.AppendMessage(ctx, "s1", TextMessage("m1", RoleUser, "hello"))
	store.SetProfile(ctx, "s1", Profile{Subject: "vitalik", Topics: []string{"zk"}, Summary: "sum"})

	if err := store.Clear(ctx, "s1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	history, _ := store.History(ctx, "s1")
	if len(history) != 0 {
		t.Errorf("expected empty history, got %d", len(history))
	}
	p, _ := store.GetProfile(ctx, "s1")
	if p != nil {
		t.Errorf("expected no profile, got %+v", p)
	}
}

func TestProfileLastWriteWins(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	store.SetProfile(ctx, "s1", Profile{Subject: "alice", Topics: []string{"defi"}, Summary: "first", ItemsAnalyzed: 10})
	store.SetProfile(ctx, "s1", Profile{Subject: "bob", Topics: []string{"zk", "rollups"}, Summary: "second", ItemsAnalyzed: 20})

	p, err := store.GetProfile(ctx, "s1")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if p == nil || p.Subject != "bob" || p.Summary != "second" {
		t.Errorf("expected second profile to win, got %+v", p)
	}
	if len(p.Topics) != 2 {
		t.Errorf("unexpected topics: %v", p.Topics)
	}
}

func TestGetProfileAbsent(t *testing.T) {
	store := setupTestStore(t)
	p, err := store.GetProfile(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if p != nil {
		t.Errorf("expected nil, got %+v", p)
	}
}
