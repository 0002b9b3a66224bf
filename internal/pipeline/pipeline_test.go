package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tubesweep/tubesweep/internal/classifier"
	"github.com/tubesweep/tubesweep/internal/models"
)

// --- Mock implementations ---

type mockSettings struct {
	settings models.Settings
	err      error
}

func (m *mockSettings) Load() (models.Settings, error) { return m.settings, m.err }

type mockComments struct {
	snapshot  models.Snapshot
	loadErr   error
	saveErr   error
	saved     *models.Snapshot
	saveCount int
}

func (m *mockComments) Load() (models.Snapshot, error) { return m.snapshot, m.loadErr }

func (m *mockComments) Save(snapshot models.Snapshot) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saveCount++
	copied := snapshot
	m.saved = &copied
	return nil
}

type mockLister struct {
	videos []models.Video
	err    error
	calls  int
}

func (m *mockLister) ListRecentVideos(_ context.Context, _, _ string) ([]models.Video, error) {
	m.calls++
	return m.videos, m.err
}

type mockFetcher struct {
	byVideo map[string][]models.Comment
	errFor  map[string]error
	calls   int
}

func (m *mockFetcher) FetchComments(_ context.Context, _, videoID string) ([]models.Comment, error) {
	m.calls++
	if err := m.errFor[videoID]; err != nil {
		return nil, err
	}
	return m.byVideo[videoID], nil
}

type mockModerator struct {
	flagged []string
	err     error
}

func (m *mockModerator) Flag(_ context.Context, _ models.Settings, commentID string) error {
	if m.err != nil {
		return m.err
	}
	m.flagged = append(m.flagged, commentID)
	return nil
}

func newTestPipeline(t *testing.T, settings *mockSettings, comments *mockComments, lister *mockLister, fetcher *mockFetcher, moderator *mockModerator) *Pipeline {
	t.Helper()
	c, err := classifier.New()
	if err != nil {
		t.Fatalf("classifier.New() returned unexpected error: %v", err)
	}
	return New(settings, comments, lister, fetcher, moderator, c, nil)
}

func configured() *mockSettings {
	return &mockSettings{settings: models.Settings{APIKey: "key", ChannelID: "UC1"}}
}

// --- Tests ---

func TestRun_EmptyStoreOneSpamComment(t *testing.T) {
	comments := &mockComments{snapshot: models.NewSnapshot()}
	lister := &mockLister{videos: []models.Video{{ID: "v1", Title: "upload"}}}
	fetcher := &mockFetcher{byVideo: map[string][]models.Comment{
		"v1": {
			{ID: "c1", User: "alice", Text: "nice video", Timestamp: 1700000000000},
			{ID: "c2", User: "bob", Text: "buy MAX33 now", Timestamp: 1700000100000},
		},
	}}
	moderator := &mockModerator{}

	p := newTestPipeline(t, configured(), comments, lister, fetcher, moderator)
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() returned unexpected error: %v", err)
	}

	if comments.saved == nil {
		t.Fatal("expected snapshot to be persisted")
	}
	if got := len(comments.saved.Comments); got != 2 {
		t.Fatalf("expected 2 comments in store, got %d", got)
	}
	if comments.saved.Comments[0].Category != "" {
		t.Errorf("benign comment should be unclassified, got %q", comments.saved.Comments[0].Category)
	}
	if comments.saved.Comments[1].Category != models.CategorySpam {
		t.Errorf("spam comment should carry spam label, got %q", comments.saved.Comments[1].Category)
	}
	if comments.saved.Stats.Total() != 1 {
		t.Errorf("expected exactly one stats bucket count, got %d", comments.saved.Stats.Total())
	}
	if len(moderator.flagged) != 1 || moderator.flagged[0] != "c2" {
		t.Errorf("expected moderation call for c2, got %v", moderator.flagged)
	}
}

func TestRun_DedupesKnownCommentIDs(t *testing.T) {
	snapshot := models.NewSnapshot()
	snapshot.Comments = []models.Comment{{ID: "abc123", User: "carol", Text: "old"}}

	comments := &mockComments{snapshot: snapshot}
	lister := &mockLister{videos: []models.Video{{ID: "v1"}}}
	fetcher := &mockFetcher{byVideo: map[string][]models.Comment{
		"v1": {
			{ID: "abc123", User: "carol", Text: "old"},
			{ID: "new1", User: "dave", Text: "first"},
			{ID: "new2", User: "erin", Text: "second"},
		},
	}}

	p := newTestPipeline(t, configured(), comments, lister, fetcher, &mockModerator{})
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() returned unexpected error: %v", err)
	}

	if got := len(comments.saved.Comments); got != 3 {
		t.Errorf("expected exactly 2 new comments appended (3 total), got %d", got)
	}
}

func TestRun_DedupesWithinRun(t *testing.T) {
	comments := &mockComments{snapshot: models.NewSnapshot()}
	lister := &mockLister{videos: []models.Video{{ID: "v1"}, {ID: "v2"}}}
	fetcher := &mockFetcher{byVideo: map[string][]models.Comment{
		"v1": {{ID: "dup", Text: "shared"}},
		"v2": {{ID: "dup", Text: "shared"}},
	}}

	p := newTestPipeline(t, configured(), comments, lister, fetcher, &mockModerator{})
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() returned unexpected error: %v", err)
	}

	if got := len(comments.saved.Comments); got != 1 {
		t.Errorf("comment fetched from two videos should be stored once, got %d", got)
	}
}

func TestRun_MissingAPIKeyIsNoOp(t *testing.T) {
	settings := &mockSettings{settings: models.Settings{ChannelID: "UC1"}}
	comments := &mockComments{snapshot: models.NewSnapshot()}
	lister := &mockLister{}
	fetcher := &mockFetcher{}

	p := newTestPipeline(t, settings, comments, lister, fetcher, &mockModerator{})
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() returned unexpected error: %v", err)
	}

	if lister.calls != 0 || fetcher.calls != 0 {
		t.Errorf("no network calls expected without an API key, got lister=%d fetcher=%d", lister.calls, fetcher.calls)
	}
	if comments.saveCount != 0 {
		t.Errorf("no store mutation expected without an API key, got %d saves", comments.saveCount)
	}
}

func TestRun_ModerationFailureStillPersists(t *testing.T) {
	comments := &mockComments{snapshot: models.NewSnapshot()}
	lister := &mockLister{videos: []models.Video{{ID: "v1"}}}
	fetcher := &mockFetcher{byVideo: map[string][]models.Comment{
		"v1": {
			{ID: "s1", Text: "MAX 33 spam", Timestamp: 1700000000000},
			{ID: "s2", Text: "max33 again", Timestamp: 1700000100000},
		},
	}}
	moderator := &mockModerator{err: errors.New("quota exceeded")}

	p := newTestPipeline(t, configured(), comments, lister, fetcher, moderator)
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() should not fail on moderation errors, got %v", err)
	}

	if got := len(comments.saved.Comments); got != 2 {
		t.Fatalf("both comments should be persisted despite moderation failure, got %d", got)
	}
	for _, c := range comments.saved.Comments {
		if c.Category != models.CategorySpam {
			t.Errorf("comment %s should carry spam label despite moderation failure", c.ID)
		}
	}
	if comments.saved.Stats.Total() != 2 {
		t.Errorf("stats should be incremented despite moderation failure, got %d", comments.saved.Stats.Total())
	}
}

func TestRun_FetchFailureSkipsVideoOnly(t *testing.T) {
	comments := &mockComments{snapshot: models.NewSnapshot()}
	lister := &mockLister{videos: []models.Video{{ID: "broken"}, {ID: "ok"}}}
	fetcher := &mockFetcher{
		byVideo: map[string][]models.Comment{"ok": {{ID: "c1", Text: "hi"}}},
		errFor:  map[string]error{"broken": errors.New("api error")},
	}

	p := newTestPipeline(t, configured(), comments, lister, fetcher, &mockModerator{})
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() should not fail when one video errors, got %v", err)
	}

	if got := len(comments.saved.Comments); got != 1 {
		t.Errorf("comments from the healthy video should still land, got %d", got)
	}
}

func TestRun_ListFailureCoalescesToEmpty(t *testing.T) {
	comments := &mockComments{snapshot: models.NewSnapshot()}
	lister := &mockLister{err: errors.New("search unavailable")}

	p := newTestPipeline(t, configured(), comments, lister, &mockFetcher{}, &mockModerator{})
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() should treat a listing failure as no videos, got %v", err)
	}

	if comments.saveCount != 1 {
		t.Errorf("run should complete and persist the unchanged snapshot, got %d saves", comments.saveCount)
	}
}

type blockingLister struct {
	calls   atomic.Int32
	entered sync.Once
	started chan struct{}
	release chan struct{}
}

func (b *blockingLister) ListRecentVideos(_ context.Context, _, _ string) ([]models.Video, error) {
	b.calls.Add(1)
	b.entered.Do(func() { close(b.started) })
	<-b.release
	return nil, nil
}

func TestRun_ConcurrentCallsCollapseToOneRun(t *testing.T) {
	lister := &blockingLister{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	comments := &mockComments{snapshot: models.NewSnapshot()}

	c, err := classifier.New()
	if err != nil {
		t.Fatalf("classifier.New() returned unexpected error: %v", err)
	}
	p := New(configured(), comments, lister, &mockFetcher{}, &mockModerator{}, c, nil)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = p.Run(context.Background())
	}()
	<-lister.started

	go func() {
		defer wg.Done()
		_ = p.Run(context.Background())
	}()
	// Give the second call time to join the in-flight run before unblocking.
	time.Sleep(100 * time.Millisecond)
	close(lister.release)
	wg.Wait()

	if got := lister.calls.Load(); got != 1 {
		t.Errorf("overlapping calls should share one run, got %d listings", got)
	}
	if comments.saveCount != 1 {
		t.Errorf("overlapping calls should persist once, got %d saves", comments.saveCount)
	}
}

func TestRun_SnapshotLoadFailureAborts(t *testing.T) {
	comments := &mockComments{loadErr: errors.New("disk error")}
	lister := &mockLister{videos: []models.Video{{ID: "v1"}}}

	p := newTestPipeline(t, configured(), comments, lister, &mockFetcher{}, &mockModerator{})
	if err := p.Run(context.Background()); err == nil {
		t.Fatal("Run() should surface a snapshot load failure")
	}
	if comments.saveCount != 0 {
		t.Errorf("nothing should be persisted after a load failure, got %d saves", comments.saveCount)
	}
}
