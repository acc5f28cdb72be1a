package reddit

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MuditaSai/redlens/internal/retry"
	goreddit "github.com/vartanbeno/go-reddit/v2/reddit"
)

const defaultUserAgent = "redlens/0.1"

// Options configures the API-backed client.
type Options struct {
	Timeout      time.Duration
	UserAgent    string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
}

type apiClient struct {
	client *goreddit.Client
	logger *slog.Logger
}

// NewClient builds a Client on top of the go-reddit library. With a full
// credential set it authenticates as a script app, otherwise it falls back to
// Reddit's read-only mode, which is enough for public listings.
func NewClient(logger *slog.Logger, opts Options) (Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	httpClient := &http.Client{Timeout: opts.Timeout}
	var (
		client *goreddit.Client
		err    error
	)
	if opts.ClientID != "" && opts.ClientSecret != "" && opts.Username != "" && opts.Password != "" {
		logger.Info("using authenticated Reddit client", slog.String("client_id", opts.ClientID))
		client, err = goreddit.NewClient(goreddit.Credentials{
			ID:       opts.ClientID,
			Secret:   opts.ClientSecret,
			Username: opts.Username,
			Password: opts.Password,
		}, goreddit.WithHTTPClient(httpClient), goreddit.WithUserAgent(userAgent))
	} else {
		logger.Warn("credentials incomplete, using read-only Reddit client")
		client, err = goreddit.NewReadonlyClient(goreddit.WithHTTPClient(httpClient), goreddit.WithUserAgent(userAgent))
	}
	if err != nil {
		return nil, fmt.Errorf("init reddit client: %w", err)
	}
	return &apiClient{client: client, logger: logger}, nil
}

func (c *apiClient) HotPosts(ctx context.Context, subreddit string, limit int) ([]Post, error) {
	if subreddit == "" {
		return nil, fmt.Errorf("subreddit is required")
	}
	if limit <= 0 {
		limit = 25
	}
	posts, resp, err := c.client.Subreddit.HotPosts(ctx, subreddit, &goreddit.ListOptions{Limit: limit})
	if err != nil {
		return nil, classify(resp, fmt.Errorf("fetch hot posts for r/%s: %w", subreddit, err))
	}

	out := make([]Post, 0, len(posts))
	for _, post := range posts {
		if post == nil {
			continue
		}
		out = append(out, convertPost(post))
	}
	return out, nil
}

func (c *apiClient) Comments(ctx context.Context, postID string, limit int) ([]Comment, error) {
	if postID == "" {
		return nil, fmt.Errorf("post id is required")
	}
	if limit <= 0 {
		return nil, nil
	}
	pc, resp, err := c.client.Post.Get(ctx, postID)
	if err != nil {
		return nil, classify(resp, fmt.Errorf("fetch comments for post %s: %w", postID, err))
	}
	if pc == nil || len(pc.Comments) == 0 {
		return nil, nil
	}
	return flattenComments(pc.Comments, postID, limit), nil
}

func (c *apiClient) About(ctx context.Context, subreddit string) (*SubredditInfo, error) {
	if subreddit == "" {
		return nil, fmt.Errorf("subreddit is required")
	}
	sub, resp, err := c.client.Subreddit.Get(ctx, subreddit)
	if err != nil {
		return nil, classify(resp, fmt.Errorf("fetch info for r/%s: %w", subreddit, err))
	}
	if sub == nil {
		return nil, fmt.Errorf("no data for r/%s", subreddit)
	}
	info := convertSubreddit(sub)
	return &info, nil
}

func (c *apiClient) Popular(ctx context.Context, limit int) ([]SubredditInfo, error) {
	if limit <= 0 {
		limit = 25
	}
	subs, resp, err := c.client.Subreddit.Popular(ctx, &goreddit.ListSubredditOptions{
		ListOptions: goreddit.ListOptions{Limit: limit},
	})
	if err != nil {
		return nil, classify(resp, fmt.Errorf("fetch popular subreddits: %w", err))
	}
	out := make([]SubredditInfo, 0, len(subs))
	for _, sub := range subs {
		if sub == nil {
			continue
		}
		out = append(out, convertSubreddit(sub))
	}
	return out, nil
}

// classify marks client-side API errors as permanent so the caller's retry
// loop gives up immediately. Rate limits and server errors stay retryable.
func classify(resp *goreddit.Response, err error) error {
	if resp == nil {
		return err
	}
	code := resp.StatusCode
	if code >= http.StatusBadRequest && code < http.StatusInternalServerError && code != http.StatusTooManyRequests {
		return retry.Permanent(err)
	}
	return err
}

func convertPost(post *goreddit.Post) Post {
	return Post{
		ID:          post.ID,
		Title:       post.Title,
		Author:      authorOrDeleted(post.Author),
		Score:       post.Score,
		UpvoteRatio: float64(post.UpvoteRatio),
		NumComments: post.NumberOfComments,
		CreatedAt:   timestampToTime(post.Created),
		URL:         post.URL,
		Permalink:   canonicalURL(post.Permalink),
		SelfText:    post.Body,
		IsSelf:      post.IsSelfPost,
		Stickied:    post.Stickied,
		NSFW:        post.NSFW,
		Spoiler:     post.Spoiler,
		Locked:      post.Locked,
		Subreddit:   post.SubredditName,
	}
}

func convertSubreddit(sub *goreddit.Subreddit) SubredditInfo {
	return SubredditInfo{
		Name:        sub.Name,
		Title:       sub.Title,
		Description: sub.Description,
		Subscribers: sub.Subscribers,
		CreatedAt:   timestampToTime(sub.Created),
		NSFW:        sub.NSFW,
	}
}

// flattenComments walks the comment tree breadth-first so top-level comments
// land before any reply, matching the listing order users see.
func flattenComments(roots []*goreddit.Comment, postID string, limit int) []Comment {
	queue := make([]*goreddit.Comment, 0, len(roots))
	queue = append(queue, roots...)

	out := make([]Comment, 0, min(len(roots), limit))
	for len(queue) > 0 && len(out) < limit {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		queue = append(queue, c.Replies.Comments...)

		body := strings.TrimSpace(c.Body)
		if body == "" || body == "[deleted]" || body == "[removed]" {
			continue
		}
		out = append(out, Comment{
			ID:          c.ID,
			Author:      authorOrDeleted(c.Author),
			Body:        body,
			Score:       c.Score,
			CreatedAt:   timestampToTime(c.Created),
			PostID:      postID,
			ParentID:    c.ParentID,
			IsSubmitter: c.IsSubmitter,
			Stickied:    c.Stickied,
			Permalink:   canonicalURL(c.Permalink),
		})
	}
	return out
}

func authorOrDeleted(author string) string {
	if strings.TrimSpace(author) == "" {
		return DeletedAuthor
	}
	return author
}

func canonicalURL(permalink string) string {
	if permalink == "" {
		return ""
	}
	if strings.HasPrefix(permalink, "http://") || strings.HasPrefix(permalink, "https://") {
		return permalink
	}
	if strings.HasPrefix(permalink, "/") {
		return "https://www.reddit.com" + permalink
	}
	return "https://www.reddit.com/" + permalink
}

func timestampToTime(ts *goreddit.Timestamp) time.Time {
	if ts == nil {
		return time.Time{}
	}
	return ts.Time.UTC()
}
