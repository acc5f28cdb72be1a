package reddit

import (
	"context"
	"time"
)

// DeletedAuthor is recorded when Reddit no longer reports an author.
const DeletedAuthor = "[deleted]"

// Post is a single submission from a subreddit's hot listing.
type Post struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Score       int       `json:"score"`
	UpvoteRatio float64   `json:"upvote_ratio"`
	NumComments int       `json:"num_comments"`
	CreatedAt   time.Time `json:"created_utc"`
	URL         string    `json:"url"`
	Permalink   string    `json:"permalink"`
	SelfText    string    `json:"selftext"`
	IsSelf      bool      `json:"is_self"`
	Stickied    bool      `json:"stickied"`
	NSFW        bool      `json:"over_18"`
	Spoiler     bool      `json:"spoiler"`
	Locked      bool      `json:"locked"`
	Subreddit   string    `json:"subreddit"`
	Comments    []Comment `json:"comments"`
}

// Comment is a single comment, flattened out of the post's comment tree.
type Comment struct {
	ID          string    `json:"id"`
	Author      string    `json:"author"`
	Body        string    `json:"body"`
	Score       int       `json:"score"`
	CreatedAt   time.Time `json:"created_utc"`
	PostID      string    `json:"post_id"`
	ParentID    string    `json:"parent_id"`
	IsSubmitter bool      `json:"is_submitter"`
	Stickied    bool      `json:"stickied"`
	Permalink   string    `json:"permalink"`
}

// SubredditInfo describes a community.
type SubredditInfo struct {
	Name        string    `json:"name"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Subscribers int       `json:"subscribers"`
	CreatedAt   time.Time `json:"created_utc"`
	NSFW        bool      `json:"over_18"`
}

// Client is the wrapper over the Reddit API. Remote failures surface as
// errors; callers decide how many times to retry.
type Client interface {
	// HotPosts returns the hot listing for a subreddit, most prominent first.
	HotPosts(ctx context.Context, subreddit string, limit int) ([]Post, error)
	// Comments flattens the comment tree of a post breadth-first, top-level
	// comments before replies, up to limit.
	Comments(ctx context.Context, postID string, limit int) ([]Comment, error)
	// About returns basic information about a subreddit.
	About(ctx context.Context, subreddit string) (*SubredditInfo, error)
	// Popular lists popular subreddits for dynamic discovery.
	Popular(ctx context.Context, limit int) ([]SubredditInfo, error)
}
