package workflow_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"repost/internal/logging"
	"repost/internal/queue"
	"repost/internal/services"
	"repost/internal/services/catalog"
	"repost/internal/services/mailer"
	"repost/internal/stage"
	"repost/internal/testsupport"
	"repost/internal/workflow"
)

type fakeHandler struct {
	name    string
	prepare func(*queue.Item) error
	execute func(*queue.Item) error
	calls   *[]string
}

func (f *fakeHandler) Prepare(ctx context.Context, item *queue.Item) error {
	if f.prepare != nil {
		return f.prepare(item)
	}
	return nil
}

func (f *fakeHandler) Execute(ctx context.Context, item *queue.Item) error {
	if f.calls != nil {
		*f.calls = append(*f.calls, f.name)
	}
	if f.execute != nil {
		return f.execute(item)
	}
	return nil
}

func (f *fakeHandler) HealthCheck(ctx context.Context) stage.Health {
	return stage.Healthy(f.name)
}

type fakeCatalog struct {
	entries []catalog.Entry
	removed []string
	listErr error
	rmErr   error
}

func (f *fakeCatalog) NextEntry(ctx context.Context) (catalog.Entry, error) {
	if f.listErr != nil {
		return catalog.Entry{}, f.listErr
	}
	if len(f.entries) == 0 {
		return catalog.Entry{}, catalog.ErrEmptyPlaylist
	}
	return f.entries[0], nil
}

func (f *fakeCatalog) RemoveEntry(ctx context.Context, id string) error {
	if f.rmErr != nil {
		return f.rmErr
	}
	f.removed = append(f.removed, id)
	return nil
}

func (f *fakeCatalog) HealthCheck(ctx context.Context) error { return nil }

type recordingNotifier struct {
	successes []mailer.Report
	failures  []mailer.Report
}

func (r *recordingNotifier) NotifySuccess(ctx context.Context, report mailer.Report) error {
	r.successes = append(r.successes, report)
	return nil
}

func (r *recordingNotifier) NotifyFailure(ctx context.Context, report mailer.Report) error {
	r.failures = append(r.failures, report)
	return nil
}

func (r *recordingNotifier) SendTest(ctx context.Context) error { return nil }

type fixture struct {
	manager  *workflow.Manager
	store    *queue.Store
	catalog  *fakeCatalog
	notifier *recordingNotifier
	calls    []string
}

func newFixture(t *testing.T, overrides func(*workflow.StageSet, *fixture)) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	f := &fixture{
		store:    testsupport.MustOpenStore(t, cfg),
		catalog:  &fakeCatalog{},
		notifier: &recordingNotifier{},
	}
	stages := workflow.StageSet{
		Transcriber: &fakeHandler{name: "transcribe", calls: &f.calls},
		Locator:     &fakeHandler{name: "locate", calls: &f.calls},
		Drafter:     &fakeHandler{name: "draft", calls: &f.calls},
		Packager:    &fakeHandler{name: "package", calls: &f.calls},
		Publisher:   &fakeHandler{name: "publish", calls: &f.calls},
	}
	if overrides != nil {
		overrides(&stages, f)
	}
	f.manager = workflow.NewManager(cfg, f.store, stages, f.catalog, f.notifier, logging.NewNop())
	return f
}

func TestProcessItemRunsAllStagesInOrder(t *testing.T) {
	f := newFixture(t, nil)
	item := testsupport.NewItem(t, f.store, "vid-1", "Some Video")

	if err := f.manager.ProcessItem(context.Background(), item); err != nil {
		t.Fatalf("ProcessItem failed: %v", err)
	}
	if item.Status != queue.StatusCompleted {
		t.Fatalf("expected completed, got %s", item.Status)
	}
	if got := strings.Join(f.calls, ","); got != "transcribe,locate,draft,package,publish" {
		t.Fatalf("unexpected stage order: %s", got)
	}
	if len(f.catalog.removed) != 1 || f.catalog.removed[0] != "pli-vid-1" {
		t.Fatalf("expected playlist removal, got %v", f.catalog.removed)
	}
	if len(f.notifier.successes) != 1 {
		t.Fatalf("expected one success notification, got %d", len(f.notifier.successes))
	}

	persisted, err := f.store.GetByID(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if persisted.Status != queue.StatusCompleted {
		t.Fatalf("persisted status %s, want completed", persisted.Status)
	}
}

func TestStageFailureMarksItemAndNotifies(t *testing.T) {
	f := newFixture(t, func(s *workflow.StageSet, f *fixture) {
		s.Drafter = &fakeHandler{name: "draft", execute: func(*queue.Item) error {
			return services.Wrap(services.ErrExternalTool, "draft", "generate copy", "model unreachable", nil)
		}}
	})
	item := testsupport.NewItem(t, f.store, "vid-2", "Failing Video")

	err := f.manager.ProcessItem(context.Background(), item)
	if err == nil {
		t.Fatal("expected stage failure to surface")
	}
	if item.Status != queue.StatusFailed {
		t.Fatalf("expected failed, got %s", item.Status)
	}
	if len(f.notifier.failures) != 1 {
		t.Fatalf("expected one failure notification, got %d", len(f.notifier.failures))
	}
	report := f.notifier.failures[0]
	if report.Stage != "draft" {
		t.Fatalf("failure report stage %q, want draft", report.Stage)
	}
	if !strings.Contains(report.Reason, "model unreachable") {
		t.Fatalf("failure reason missing detail: %q", report.Reason)
	}
	if len(f.catalog.removed) != 0 {
		t.Fatal("playlist entry must stay on failure")
	}
}

func TestCleanupFailureDoesNotRevertSuccess(t *testing.T) {
	f := newFixture(t, func(s *workflow.StageSet, f *fixture) {
		f.catalog.rmErr = errors.New("quota exhausted")
	})
	item := testsupport.NewItem(t, f.store, "vid-3", "Sticky Video")

	if err := f.manager.ProcessItem(context.Background(), item); err != nil {
		t.Fatalf("ProcessItem failed: %v", err)
	}
	if item.Status != queue.StatusCompleted {
		t.Fatalf("expected completed despite removal failure, got %s", item.Status)
	}
	if len(f.notifier.successes) != 1 {
		t.Fatalf("expected success notification, got %d", len(f.notifier.successes))
	}
}

func TestRunNextWithEmptyLedger(t *testing.T) {
	f := newFixture(t, nil)
	if _, err := f.manager.RunNext(context.Background()); !errors.Is(err, workflow.ErrNothingToDo) {
		t.Fatalf("expected ErrNothingToDo, got %v", err)
	}
}

func TestRunNextResumesFromCheckpoint(t *testing.T) {
	f := newFixture(t, nil)
	item := testsupport.NewItem(t, f.store, "vid-4", "Resumed Video")
	item.Status = queue.StatusDrafted
	if err := f.store.Update(context.Background(), item); err != nil {
		t.Fatalf("update: %v", err)
	}

	processed, err := f.manager.RunNext(context.Background())
	if err != nil {
		t.Fatalf("RunNext failed: %v", err)
	}
	if processed.ID != item.ID {
		t.Fatalf("processed wrong item: %d", processed.ID)
	}
	if got := strings.Join(f.calls, ","); got != "package,publish" {
		t.Fatalf("expected resume from package, got %s", got)
	}
}

func TestRunNextRollsBackStrandedItem(t *testing.T) {
	f := newFixture(t, nil)
	item := testsupport.NewItem(t, f.store, "vid-5", "Stranded Video")
	item.Status = queue.StatusPublishing
	if err := f.store.Update(context.Background(), item); err != nil {
		t.Fatalf("update: %v", err)
	}

	processed, err := f.manager.RunNext(context.Background())
	if err != nil {
		t.Fatalf("RunNext failed: %v", err)
	}
	if processed.ID != item.ID {
		t.Fatalf("processed wrong item: %d", processed.ID)
	}
	if got := strings.Join(f.calls, ","); got != "publish" {
		t.Fatalf("expected rollback to repeat publish only, got %s", got)
	}
	if processed.Status != queue.StatusCompleted {
		t.Fatalf("expected completed after rollback, got %s", processed.Status)
	}
}

func TestIntakeQueuesPlaylistEntryOnce(t *testing.T) {
	f := newFixture(t, func(s *workflow.StageSet, f *fixture) {
		f.catalog.entries = []catalog.Entry{{PlaylistItemID: "pli-9", VideoID: "vid-9", Title: "Fresh Video"}}
	})

	first, err := f.manager.Intake(context.Background())
	if err != nil {
		t.Fatalf("Intake failed: %v", err)
	}
	if first.VideoID != "vid-9" || first.Status != queue.StatusPending {
		t.Fatalf("unexpected intake item: %+v", first)
	}

	second, err := f.manager.Intake(context.Background())
	if err != nil {
		t.Fatalf("second Intake failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected dedupe to return existing item, got %d and %d", first.ID, second.ID)
	}
}

func TestIntakeEmptyPlaylist(t *testing.T) {
	f := newFixture(t, nil)
	if _, err := f.manager.Intake(context.Background()); !errors.Is(err, catalog.ErrEmptyPlaylist) {
		t.Fatalf("expected ErrEmptyPlaylist, got %v", err)
	}
}
