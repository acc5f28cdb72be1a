package collector

import (
	"context"
	"log/slog"
	"strings"

	"github.com/MuditaSai/redlens/internal/config"
	"github.com/MuditaSai/redlens/internal/reddit"
)

// Communities whose names suggest content the collection is not after.
var defaultExcludeKeywords = []string{
	"nsfw", "porn", "sex", "xxx", "adult", "onlyfans", "gone", "wild",
	"circlejerk", "jerk", "shitpost", "copypasta",
}

// resolveTargets returns the subreddits for this run: the static configured
// list, or the filtered popular listing when discovery is enabled. Discovery
// failures fall back to the static list.
func (c *Collector) resolveTargets(ctx context.Context) []string {
	if !c.doc.Discovery.Enabled {
		return c.doc.Collection.Subreddits
	}

	count := c.doc.Discovery.Count
	c.logger.Info("discovering popular subreddits", slog.Int("count", count))

	// Overfetch so the filters below still leave enough candidates.
	subs, err := c.client.Popular(ctx, count*2)
	if err != nil {
		c.logger.Error("subreddit discovery failed, falling back to static list", slog.String("error", err.Error()))
		return c.doc.Collection.Subreddits
	}

	names := filterDiscovered(subs, c.doc.Discovery)
	if len(names) == 0 {
		c.logger.Warn("discovery produced no usable subreddits, falling back to static list")
		return c.doc.Collection.Subreddits
	}
	c.logger.Info("discovered subreddits", slog.Int("count", len(names)))
	return names
}

func filterDiscovered(subs []reddit.SubredditInfo, cfg config.Discovery) []string {
	keywords := cfg.ExcludeKeywords
	if len(keywords) == 0 {
		keywords = defaultExcludeKeywords
	}

	names := make([]string, 0, cfg.Count)
	for _, sub := range subs {
		if sub.NSFW {
			continue
		}
		if containsKeyword(sub.Name, keywords) {
			continue
		}
		// Tiny communities in the popular listing are usually spam.
		if cfg.MinSubscribers > 0 && sub.Subscribers < cfg.MinSubscribers {
			continue
		}
		names = append(names, sub.Name)
		if len(names) >= cfg.Count {
			break
		}
	}
	return names
}

func containsKeyword(name string, keywords []string) bool {
	lower := strings.ToLower(name)
	for _, keyword := range keywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
