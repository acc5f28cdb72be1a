package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/MuditaSai/redlens/internal/config"
	"github.com/MuditaSai/redlens/internal/reddit"
	redditmock "github.com/MuditaSai/redlens/internal/reddit/mock"
	"github.com/MuditaSai/redlens/internal/retry"
)

func testDoc(subreddits ...string) *config.Document {
	return &config.Document{
		Collection: config.Collection{
			Subreddits:        subreddits,
			PostsPerSubreddit: 5,
			CommentsPerPost:   5,
			MaxRetries:        3,
		},
	}
}

func somePosts(ids ...string) []reddit.Post {
	posts := make([]reddit.Post, 0, len(ids))
	for _, id := range ids {
		posts = append(posts, reddit.Post{ID: id, Title: "t-" + id, Score: 10})
	}
	return posts
}

func TestRunSucceedsAfterTwoFailures(t *testing.T) {
	calls := 0
	client := &redditmock.Client{
		HotPostsFn: func(ctx context.Context, subreddit string, limit int) ([]reddit.Post, error) {
			calls++
			if calls <= 2 {
				return nil, errors.New("reddit transient error")
			}
			return somePosts("p1", "p2"), nil
		},
		AboutFn: func(ctx context.Context, subreddit string) (*reddit.SubredditInfo, error) {
			return &reddit.SubredditInfo{Name: subreddit}, nil
		},
	}

	c, err := New(client, testDoc("golang"), Options{})
	if err != nil {
		t.Fatalf("failed to create collector: %v", err)
	}
	run, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if calls != 3 {
		t.Fatalf("hot posts calls = %d, want 3", calls)
	}
	if len(run.Subreddits) != 1 {
		t.Fatalf("expected 1 subreddit entry, got %d", len(run.Subreddits))
	}
	if run.Subreddits[0].Status != StatusOK {
		t.Fatalf("status = %q, want ok", run.Subreddits[0].Status)
	}
	if len(run.Subreddits[0].Posts) != 2 {
		t.Fatalf("posts = %d, want 2", len(run.Subreddits[0].Posts))
	}
	if run.Summary.Succeeded != 1 || run.Summary.Failed != 0 {
		t.Fatalf("summary = %+v", run.Summary)
	}
}

func TestRunRetriesNeverExceedConfiguredMaximum(t *testing.T) {
	calls := map[string]int{}
	client := &redditmock.Client{
		HotPostsFn: func(ctx context.Context, subreddit string, limit int) ([]reddit.Post, error) {
			calls[subreddit]++
			return nil, errors.New("still broken")
		},
		AboutFn: func(ctx context.Context, subreddit string) (*reddit.SubredditInfo, error) {
			return nil, errors.New("no info")
		},
	}

	c, err := New(client, testDoc("a", "b"), Options{})
	if err != nil {
		t.Fatalf("failed to create collector: %v", err)
	}
	run, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	for _, subreddit := range []string{"a", "b"} {
		if calls[subreddit] != 3 {
			t.Fatalf("calls[%s] = %d, want 3", subreddit, calls[subreddit])
		}
	}
	if run.Summary.Failed != 2 {
		t.Fatalf("failed = %d, want 2", run.Summary.Failed)
	}
	if len(run.Summary.Errors) != 2 {
		t.Fatalf("errors = %d, want 2", len(run.Summary.Errors))
	}
}

func TestRunDoesNotRetryPermanentErrors(t *testing.T) {
	calls := 0
	client := &redditmock.Client{
		HotPostsFn: func(ctx context.Context, subreddit string, limit int) ([]reddit.Post, error) {
			calls++
			return nil, retry.Permanent(errors.New("invalid credentials"))
		},
	}

	c, err := New(client, testDoc("golang"), Options{})
	if err != nil {
		t.Fatalf("failed to create collector: %v", err)
	}
	run, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if run.Subreddits[0].Status != StatusFailed {
		t.Fatalf("status = %q, want failed", run.Subreddits[0].Status)
	}
}

func TestRunAlwaysRecordsOneEntryPerSubreddit(t *testing.T) {
	client := &redditmock.Client{
		HotPostsFn: func(ctx context.Context, subreddit string, limit int) ([]reddit.Post, error) {
			if subreddit == "broken" {
				return nil, retry.Permanent(errors.New("forbidden"))
			}
			return somePosts("p1"), nil
		},
	}

	c, err := New(client, testDoc("golang", "broken", "science"), Options{})
	if err != nil {
		t.Fatalf("failed to create collector: %v", err)
	}
	run, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(run.Subreddits) != 3 {
		t.Fatalf("entries = %d, want 3", len(run.Subreddits))
	}
	wantStatus := map[string]Status{"golang": StatusOK, "broken": StatusFailed, "science": StatusOK}
	for _, entry := range run.Subreddits {
		if entry.Status != wantStatus[entry.Name] {
			t.Fatalf("entry %s status = %q, want %q", entry.Name, entry.Status, wantStatus[entry.Name])
		}
	}
	if run.Summary.Succeeded != 2 || run.Summary.Failed != 1 {
		t.Fatalf("summary = %+v", run.Summary)
	}
}

func TestRunCommentFailureKeepsPost(t *testing.T) {
	client := &redditmock.Client{
		PostList: somePosts("p1"),
		CommentsFn: func(ctx context.Context, postID string, limit int) ([]reddit.Comment, error) {
			return nil, retry.Permanent(errors.New("comments locked"))
		},
	}

	c, err := New(client, testDoc("golang"), Options{})
	if err != nil {
		t.Fatalf("failed to create collector: %v", err)
	}
	run, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	entry := run.Subreddits[0]
	if entry.Status != StatusOK {
		t.Fatalf("status = %q, want ok", entry.Status)
	}
	if len(entry.Posts) != 1 {
		t.Fatalf("posts = %d, want 1", len(entry.Posts))
	}
	if len(entry.Posts[0].Comments) != 0 {
		t.Fatalf("comments = %d, want 0", len(entry.Posts[0].Comments))
	}
}

func TestRunCountsComments(t *testing.T) {
	client := &redditmock.Client{
		PostList: somePosts("p1", "p2"),
		CommentList: []reddit.Comment{
			{ID: "c1", Body: "hello"},
			{ID: "c2", Body: "world"},
		},
	}

	c, err := New(client, testDoc("golang"), Options{})
	if err != nil {
		t.Fatalf("failed to create collector: %v", err)
	}
	run, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if run.Summary.TotalPosts != 2 {
		t.Fatalf("total posts = %d, want 2", run.Summary.TotalPosts)
	}
	if run.Summary.TotalComments != 4 {
		t.Fatalf("total comments = %d, want 4", run.Summary.TotalComments)
	}
}

func TestRunAppliesMinScoreAndFilters(t *testing.T) {
	doc := testDoc("golang")
	doc.Collection.MinScore = 5
	doc.Filters = []config.FilterRule{
		{Name: "skip-stickied", Rule: "stickied", Action: config.FilterActionDrop},
	}

	client := &redditmock.Client{
		PostList: []reddit.Post{
			{ID: "low", Score: 1},
			{ID: "pinned", Score: 100, Stickied: true},
			{ID: "good", Score: 50},
		},
	}

	c, err := New(client, doc, Options{})
	if err != nil {
		t.Fatalf("failed to create collector: %v", err)
	}
	run, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	posts := run.Subreddits[0].Posts
	if len(posts) != 1 {
		t.Fatalf("posts = %d, want 1", len(posts))
	}
	if posts[0].ID != "good" {
		t.Fatalf("post id = %q, want good", posts[0].ID)
	}
}

type fakeStore struct {
	seen   map[string]bool
	marked []string
}

func (s *fakeStore) Seen(ctx context.Context, id string) (bool, error) {
	return s.seen[id], nil
}

func (s *fakeStore) Mark(ctx context.Context, id string) error {
	s.marked = append(s.marked, id)
	return nil
}

func (s *fakeStore) MarkBatch(ctx context.Context, ids []string) error {
	s.marked = append(s.marked, ids...)
	return nil
}

func (s *fakeStore) Close() error { return nil }

func TestRunSkipsAlreadyCollectedPosts(t *testing.T) {
	store := &fakeStore{seen: map[string]bool{"old": true}}
	client := &redditmock.Client{
		PostList: somePosts("old", "new"),
	}

	c, err := New(client, testDoc("golang"), Options{Store: store})
	if err != nil {
		t.Fatalf("failed to create collector: %v", err)
	}
	run, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	posts := run.Subreddits[0].Posts
	if len(posts) != 1 || posts[0].ID != "new" {
		t.Fatalf("posts = %+v, want only new", posts)
	}
	if len(store.marked) != 1 || store.marked[0] != "new" {
		t.Fatalf("marked = %v, want [new]", store.marked)
	}
}

func TestRunReturnsPartialEnvelopeOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client := &redditmock.Client{
		HotPostsFn: func(ctx context.Context, subreddit string, limit int) ([]reddit.Post, error) {
			cancel()
			return somePosts("p1"), nil
		},
	}

	c, err := New(client, testDoc("first", "second"), Options{})
	if err != nil {
		t.Fatalf("failed to create collector: %v", err)
	}
	run, err := c.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(run.Subreddits) != 1 {
		t.Fatalf("entries = %d, want 1", len(run.Subreddits))
	}
	if run.Metadata.CompletedAt.IsZero() {
		t.Fatalf("expected metadata to be finalized")
	}
}
