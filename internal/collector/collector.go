// Package collector orchestrates a collection run: it walks the target
// subreddits sequentially, fetches hot posts and their comments through the
// client wrapper, and assembles the run envelope.
package collector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/MuditaSai/redlens/internal/config"
	"github.com/MuditaSai/redlens/internal/dedupe"
	"github.com/MuditaSai/redlens/internal/filter"
	"github.com/MuditaSai/redlens/internal/reddit"
	"github.com/MuditaSai/redlens/internal/retry"
)

const tracerName = "github.com/MuditaSai/redlens/internal/collector"

type Collector struct {
	client  reddit.Client
	doc     *config.Document
	filters *filter.Set
	store   dedupe.Store
	logger  *slog.Logger
	tracer  trace.Tracer
	retry   retry.Config
}

// Options carries optional collaborators. A nil Store disables dedupe.
type Options struct {
	Logger *slog.Logger
	Store  dedupe.Store
}

func New(client reddit.Client, doc *config.Document, opts Options) (*Collector, error) {
	if client == nil {
		return nil, fmt.Errorf("reddit client is required")
	}
	if doc == nil {
		return nil, fmt.Errorf("config document is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	filters, err := filter.Compile(doc.Filters, logger)
	if err != nil {
		return nil, err
	}
	return &Collector{
		client:  client,
		doc:     doc,
		filters: filters,
		store:   opts.Store,
		logger:  logger,
		tracer:  otel.Tracer(tracerName),
		retry:   retry.Config{Attempts: doc.Collection.MaxRetries, BaseDelay: 200 * time.Millisecond},
	}, nil
}

// Run performs one collection pass. A failing subreddit records a failure
// entry and the loop continues; the returned envelope always has one entry
// per target subreddit. The error is non-nil only when the context is
// cancelled mid-run, and the partial envelope is still returned.
func (c *Collector) Run(ctx context.Context) (*Run, error) {
	ctx, span := c.tracer.Start(ctx, "collector.run")
	defer span.End()

	targets := c.resolveTargets(ctx)
	started := time.Now().UTC()
	c.logger.Info("starting collection run",
		slog.Int("subreddits", len(targets)),
		slog.Int("posts_per_subreddit", c.doc.Collection.PostsPerSubreddit),
		slog.Int("comments_per_post", c.doc.Collection.CommentsPerPost))

	run := &Run{
		Metadata: Metadata{
			StartedAt:         started,
			TargetSubreddits:  targets,
			PostsPerSubreddit: c.doc.Collection.PostsPerSubreddit,
			CommentsPerPost:   c.doc.Collection.CommentsPerPost,
		},
		Subreddits: make([]SubredditResult, 0, len(targets)),
	}

	delay := c.doc.Collection.RequestDelay.Duration
	for i, name := range targets {
		c.logger.Info("fetching subreddit",
			slog.String("subreddit", name),
			slog.Int("progress", i+1),
			slog.Int("total", len(targets)))

		result := c.collectSubreddit(ctx, name)
		run.Subreddits = append(run.Subreddits, result)

		if result.Status == StatusOK {
			run.Summary.Succeeded++
			run.Summary.TotalPosts += len(result.Posts)
			for _, post := range result.Posts {
				run.Summary.TotalComments += len(post.Comments)
			}
		} else {
			run.Summary.Failed++
			run.Summary.Errors = append(run.Summary.Errors, SubredditError{Subreddit: name, Error: result.Error})
			c.logger.Error("subreddit failed", slog.String("subreddit", name), slog.String("error", result.Error))
		}

		if err := ctx.Err(); err != nil {
			c.finalize(run, started)
			span.SetStatus(codes.Error, "run cancelled")
			return run, err
		}
		// Rate limiting between subreddits, never after the last one.
		if i < len(targets)-1 && delay > 0 {
			if err := sleepCtx(ctx, delay); err != nil {
				c.finalize(run, started)
				span.SetStatus(codes.Error, "run cancelled")
				return run, err
			}
		}
	}

	c.finalize(run, started)
	c.logger.Info("collection run completed",
		slog.Float64("duration_seconds", run.Metadata.DurationSeconds),
		slog.Int("successful_subreddits", run.Summary.Succeeded),
		slog.Int("failed_subreddits", run.Summary.Failed),
		slog.Int("total_posts", run.Summary.TotalPosts),
		slog.Int("total_comments", run.Summary.TotalComments))
	return run, nil
}

func (c *Collector) collectSubreddit(ctx context.Context, name string) SubredditResult {
	ctx, span := c.tracer.Start(ctx, "collector.subreddit",
		trace.WithAttributes(attribute.String("subreddit", name)))
	defer span.End()

	result := SubredditResult{
		Name:      name,
		FetchedAt: time.Now().UTC(),
		Status:    StatusOK,
		Posts:     []reddit.Post{},
	}

	// Subreddit info is nice to have; losing it does not fail the entry.
	info, err := c.client.About(ctx, name)
	if err != nil {
		c.logger.Warn("could not fetch subreddit info", slog.String("subreddit", name), slog.String("error", err.Error()))
	} else {
		result.Info = info
	}

	var posts []reddit.Post
	err = retry.Do(ctx, c.retry, func() error {
		var err error
		posts, err = c.client.HotPosts(ctx, name, c.doc.Collection.PostsPerSubreddit)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "hot posts fetch failed")
		result.Status = StatusFailed
		result.Error = err.Error()
		return result
	}

	posts = c.selectPosts(ctx, name, posts)

	collected := make([]string, 0, len(posts))
	for i := range posts {
		post := &posts[i]
		post.Comments = c.fetchComments(ctx, post.ID)
		collected = append(collected, post.ID)
	}
	result.Posts = posts

	if c.store != nil && len(collected) > 0 {
		if err := c.store.MarkBatch(ctx, collected); err != nil {
			c.logger.Warn("could not record collected posts", slog.String("subreddit", name), slog.String("error", err.Error()))
		}
	}

	span.SetAttributes(attribute.Int("posts", len(result.Posts)))
	c.logger.Info("completed subreddit", slog.String("subreddit", name), slog.Int("posts", len(result.Posts)))
	return result
}

// selectPosts applies the score threshold, filter rules and the dedupe store
// before any comment fetching happens.
func (c *Collector) selectPosts(ctx context.Context, name string, posts []reddit.Post) []reddit.Post {
	if minScore := c.doc.Collection.MinScore; minScore > 0 {
		kept := posts[:0]
		for _, post := range posts {
			if post.Score >= minScore {
				kept = append(kept, post)
			}
		}
		posts = kept
	}

	posts = c.filters.Apply(posts)

	if c.store == nil {
		return posts
	}
	kept := make([]reddit.Post, 0, len(posts))
	for _, post := range posts {
		seen, err := c.store.Seen(ctx, post.ID)
		if err != nil {
			c.logger.Warn("dedupe lookup failed, keeping post",
				slog.String("subreddit", name), slog.String("post_id", post.ID), slog.String("error", err.Error()))
			kept = append(kept, post)
			continue
		}
		if seen {
			continue
		}
		kept = append(kept, post)
	}
	return kept
}

// fetchComments never fails the post; a post without comments is still worth
// keeping.
func (c *Collector) fetchComments(ctx context.Context, postID string) []reddit.Comment {
	limit := c.doc.Collection.CommentsPerPost
	if limit <= 0 {
		return []reddit.Comment{}
	}
	var comments []reddit.Comment
	err := retry.Do(ctx, c.retry, func() error {
		var err error
		comments, err = c.client.Comments(ctx, postID, limit)
		return err
	})
	if err != nil {
		c.logger.Warn("could not fetch comments", slog.String("post_id", postID), slog.String("error", err.Error()))
		return []reddit.Comment{}
	}
	if comments == nil {
		comments = []reddit.Comment{}
	}
	return comments
}

func (c *Collector) finalize(run *Run, started time.Time) {
	completed := time.Now().UTC()
	run.Metadata.CompletedAt = completed
	run.Metadata.DurationSeconds = completed.Sub(started).Seconds()
	if run.Summary.Errors == nil {
		run.Summary.Errors = []SubredditError{}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
