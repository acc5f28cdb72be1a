package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Document represents the top-level structure of a redlens.yaml file.
type Document struct {
	Collection Collection   `yaml:"collection"`
	Discovery  Discovery    `yaml:"discovery,omitempty"`
	Filters    []FilterRule `yaml:"filters,omitempty"`
	Dedupe     Dedupe       `yaml:"dedupe,omitempty"`
	Output     Output       `yaml:"output,omitempty"`
	Schedule   Schedule     `yaml:"schedule,omitempty"`
}

// Collection configures what gets fetched and how politely.
type Collection struct {
	Subreddits        []string `yaml:"subreddits"`
	PostsPerSubreddit int      `yaml:"posts_per_subreddit,omitempty"`
	CommentsPerPost   int      `yaml:"comments_per_post,omitempty"`
	MinScore          int      `yaml:"min_score,omitempty"`
	RequestDelay      Duration `yaml:"request_delay,omitempty"`
	MaxRetries        int      `yaml:"max_retries,omitempty"`
}

// Discovery configures dynamic subreddit discovery. When enabled, the target
// list comes from Reddit's popular listing instead of the static list, which
// remains as a fallback.
type Discovery struct {
	Enabled         bool     `yaml:"enabled,omitempty"`
	Count           int      `yaml:"count,omitempty"`
	MinSubscribers  int      `yaml:"min_subscribers,omitempty"`
	ExcludeKeywords []string `yaml:"exclude_keywords,omitempty"`
}

// FilterRule defines an expression-based post filter.
type FilterRule struct {
	Name   string `yaml:"name"`
	Rule   string `yaml:"rule"`
	Action string `yaml:"action"`
}

// Dedupe configures the seen-post store. An empty path disables it.
type Dedupe struct {
	Path  string   `yaml:"path,omitempty"`
	Table string   `yaml:"table,omitempty"`
	TTL   Duration `yaml:"ttl,omitempty"`
}

// Output configures envelope serialization. Path may be a file or a
// directory; directories get a timestamped filename.
type Output struct {
	Path   string `yaml:"path,omitempty"`
	Pretty *bool  `yaml:"pretty,omitempty"`
}

// Schedule configures daemon mode.
type Schedule struct {
	Cron     string `yaml:"cron,omitempty"`
	Timezone string `yaml:"timezone,omitempty"`
}

const (
	DefaultPostsPerSubreddit = 25
	DefaultCommentsPerPost   = 50
	DefaultMaxRetries        = 3
	DefaultRequestDelay      = time.Second
	DefaultDiscoveryCount    = 50
	DefaultMinSubscribers    = 10000
)

const (
	FilterActionDrop = "drop"
	FilterActionKeep = "keep"
)

// Load reads and validates a collection document.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	doc.applyDefaults()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (d *Document) applyDefaults() {
	if d.Collection.PostsPerSubreddit == 0 {
		d.Collection.PostsPerSubreddit = DefaultPostsPerSubreddit
	}
	if d.Collection.CommentsPerPost == 0 {
		d.Collection.CommentsPerPost = DefaultCommentsPerPost
	}
	if d.Collection.MaxRetries == 0 {
		d.Collection.MaxRetries = DefaultMaxRetries
	}
	if d.Collection.RequestDelay.Duration == 0 {
		d.Collection.RequestDelay.Duration = DefaultRequestDelay
	}
	if d.Discovery.Count == 0 {
		d.Discovery.Count = DefaultDiscoveryCount
	}
	if d.Discovery.MinSubscribers == 0 {
		d.Discovery.MinSubscribers = DefaultMinSubscribers
	}
	for i := range d.Filters {
		if d.Filters[i].Action == "" {
			d.Filters[i].Action = FilterActionDrop
		}
	}
}

func (d *Document) Validate() error {
	if len(d.Collection.Subreddits) == 0 && !d.Discovery.Enabled {
		return fmt.Errorf("collection.subreddits is required unless discovery is enabled")
	}
	if d.Collection.PostsPerSubreddit < 0 {
		return fmt.Errorf("collection.posts_per_subreddit must be >= 0")
	}
	if d.Collection.CommentsPerPost < 0 {
		return fmt.Errorf("collection.comments_per_post must be >= 0")
	}
	if d.Collection.MaxRetries < 1 {
		return fmt.Errorf("collection.max_retries must be >= 1")
	}
	if d.Collection.RequestDelay.Duration < 0 {
		return fmt.Errorf("collection.request_delay must be >= 0")
	}
	if d.Discovery.Enabled && d.Discovery.Count < 1 {
		return fmt.Errorf("discovery.count must be >= 1")
	}
	for _, f := range d.Filters {
		if f.Name == "" || f.Rule == "" {
			return fmt.Errorf("filter name and rule are required")
		}
		if f.Action != FilterActionDrop && f.Action != FilterActionKeep {
			return fmt.Errorf("filter %q: action must be %q or %q", f.Name, FilterActionDrop, FilterActionKeep)
		}
	}
	if d.Dedupe.Path != "" && d.Dedupe.TTL.Duration < 0 {
		return fmt.Errorf("dedupe.ttl must be >= 0")
	}
	return nil
}

// PrettyOutput reports whether the envelope should be indented. Defaults to
// true when unset.
func (d *Document) PrettyOutput() bool {
	if d.Output.Pretty == nil {
		return true
	}
	return *d.Output.Pretty
}
