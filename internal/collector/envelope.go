package collector

import (
	"time"

	"github.com/MuditaSai/redlens/internal/reddit"
)

// Status reports how a subreddit fared during a run.
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// Run is the envelope for one collection run. It is built once, serialized,
// and discarded.
type Run struct {
	Metadata   Metadata          `json:"metadata"`
	Subreddits []SubredditResult `json:"subreddits"`
	Summary    Summary           `json:"summary"`
}

type Metadata struct {
	StartedAt         time.Time `json:"started_at"`
	CompletedAt       time.Time `json:"completed_at"`
	DurationSeconds   float64   `json:"duration_seconds"`
	TargetSubreddits  []string  `json:"target_subreddits"`
	PostsPerSubreddit int       `json:"posts_per_subreddit"`
	CommentsPerPost   int       `json:"comments_per_post"`
}

// SubredditResult holds everything collected for one subreddit. Failed
// subreddits still get an entry, with Status set and Posts empty.
type SubredditResult struct {
	Name      string                `json:"name"`
	FetchedAt time.Time             `json:"fetched_at"`
	Status    Status                `json:"status"`
	Error     string                `json:"error,omitempty"`
	Info      *reddit.SubredditInfo `json:"info,omitempty"`
	Posts     []reddit.Post         `json:"posts"`
}

type Summary struct {
	Succeeded     int              `json:"successful_subreddits"`
	Failed        int              `json:"failed_subreddits"`
	TotalPosts    int              `json:"total_posts"`
	TotalComments int              `json:"total_comments"`
	Errors        []SubredditError `json:"errors"`
}

type SubredditError struct {
	Subreddit string `json:"subreddit"`
	Error     string `json:"error"`
}
