package queue_test

import (
	"context"
	"fmt"
	"testing"

	"repost/internal/queue"
	"repost/internal/testsupport"
)

func TestOpenInitializesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item, err := store.NewItem(ctx, "vid-1", "pl-item-1", "Sample Video", "https://example.com/watch?v=vid-1")
	if err != nil {
		t.Fatalf("NewItem failed: %v", err)
	}
	if item.ID == 0 {
		t.Fatal("expected item ID to be assigned")
	}
	if item.Status != queue.StatusPending {
		t.Fatalf("expected pending status, got %s", item.Status)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched == nil || fetched.Title != "Sample Video" {
		t.Fatalf("unexpected fetched item: %#v", fetched)
	}

	found, err := store.FindByVideoID(ctx, "vid-1")
	if err != nil {
		t.Fatalf("FindByVideoID failed: %v", err)
	}
	if found == nil || found.ID != item.ID {
		t.Fatalf("expected to find inserted item, got %#v", found)
	}
}

func TestUpdateRoundTripsDraftFields(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item, err := store.NewItem(ctx, "vid-2", "", "", "https://example.com/watch?v=vid-2")
	if err != nil {
		t.Fatalf("NewItem failed: %v", err)
	}

	item.Status = queue.StatusDrafted
	item.DraftTitle = "生成标题"
	item.DraftDescription = "generated description"
	item.DraftConfidence = 0.55
	item.DraftUncertain = true
	item.SoftSuccess = true
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.Status != queue.StatusDrafted {
		t.Fatalf("expected drafted status, got %s", fetched.Status)
	}
	if fetched.DraftTitle != "生成标题" || fetched.DraftConfidence != 0.55 {
		t.Fatalf("draft fields not persisted: %#v", fetched)
	}
	if !fetched.DraftUncertain || !fetched.SoftSuccess {
		t.Fatalf("expected boolean fields to round trip: %#v", fetched)
	}
}

func TestNextForStatusesReturnsOldest(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := store.NewItem(ctx, fmt.Sprintf("vid-%d", i), "", "", fmt.Sprintf("https://example.com/%d", i)); err != nil {
			t.Fatalf("NewItem failed: %v", err)
		}
	}

	next, err := store.NextForStatuses(ctx, queue.StatusPending)
	if err != nil {
		t.Fatalf("NextForStatuses failed: %v", err)
	}
	if next == nil || next.VideoID != "vid-0" {
		t.Fatalf("expected oldest pending item, got %#v", next)
	}

	none, err := store.NextForStatuses(ctx, queue.StatusPublished)
	if err != nil {
		t.Fatalf("NextForStatuses failed: %v", err)
	}
	if none != nil {
		t.Fatalf("expected no published items, got %#v", none)
	}
}

func TestResetStuckProcessingRollsBack(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item, err := store.NewItem(ctx, "vid-stuck", "", "", "https://example.com/stuck")
	if err != nil {
		t.Fatalf("NewItem failed: %v", err)
	}
	item.Status = queue.StatusPublishing
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	reset, err := store.ResetStuckProcessing(ctx)
	if err != nil {
		t.Fatalf("ResetStuckProcessing failed: %v", err)
	}
	if reset != 1 {
		t.Fatalf("expected one reset item, got %d", reset)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.Status != queue.StatusPackaged {
		t.Fatalf("expected rollback to packaged, got %s", fetched.Status)
	}
}

func TestRetryFailed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item, err := store.NewItem(ctx, "vid-failed", "", "", "https://example.com/failed")
	if err != nil {
		t.Fatalf("NewItem failed: %v", err)
	}
	item.SetFailed("publish gate not satisfied")
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	retried, err := store.RetryFailed(ctx, 0)
	if err != nil {
		t.Fatalf("RetryFailed failed: %v", err)
	}
	if retried != 1 {
		t.Fatalf("expected one retried item, got %d", retried)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.Status != queue.StatusPending || fetched.ErrorMessage != "" {
		t.Fatalf("expected clean pending item, got %#v", fetched)
	}
}

func TestParseStatus(t *testing.T) {
	cases := []struct {
		input string
		want  queue.Status
		ok    bool
	}{
		{"pending", queue.StatusPending, true},
		{" Publishing ", queue.StatusPublishing, true},
		{"COMPLETED", queue.StatusCompleted, true},
		{"bogus", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := queue.ParseStatus(tc.input)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Fatalf("ParseStatus(%q) = %q, %v; want %q, %v", tc.input, got, ok, tc.want, tc.ok)
		}
	}
}
