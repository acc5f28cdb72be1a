package mock

import (
	"context"

	"github.com/MuditaSai/redlens/internal/reddit"
)

// Client is a scripted reddit.Client for tests. Unset funcs fall back to the
// canned fields.
type Client struct {
	HotPostsFn func(ctx context.Context, subreddit string, limit int) ([]reddit.Post, error)
	CommentsFn func(ctx context.Context, postID string, limit int) ([]reddit.Comment, error)
	AboutFn    func(ctx context.Context, subreddit string) (*reddit.SubredditInfo, error)
	PopularFn  func(ctx context.Context, limit int) ([]reddit.SubredditInfo, error)

	PostList    []reddit.Post
	CommentList []reddit.Comment
	Info        *reddit.SubredditInfo
	SubList     []reddit.SubredditInfo
	Err         error
}

func (c *Client) HotPosts(ctx context.Context, subreddit string, limit int) ([]reddit.Post, error) {
	if c.HotPostsFn != nil {
		return c.HotPostsFn(ctx, subreddit, limit)
	}
	if c.Err != nil {
		return nil, c.Err
	}
	return c.PostList, nil
}

func (c *Client) Comments(ctx context.Context, postID string, limit int) ([]reddit.Comment, error) {
	if c.CommentsFn != nil {
		return c.CommentsFn(ctx, postID, limit)
	}
	if c.Err != nil {
		return nil, c.Err
	}
	return c.CommentList, nil
}

func (c *Client) About(ctx context.Context, subreddit string) (*reddit.SubredditInfo, error) {
	if c.AboutFn != nil {
		return c.AboutFn(ctx, subreddit)
	}
	if c.Err != nil {
		return nil, c.Err
	}
	return c.Info, nil
}

func (c *Client) Popular(ctx context.Context, limit int) ([]reddit.SubredditInfo, error) {
	if c.PopularFn != nil {
		return c.PopularFn(ctx, limit)
	}
	if c.Err != nil {
		return nil, c.Err
	}
	return c.SubList, nil
}
