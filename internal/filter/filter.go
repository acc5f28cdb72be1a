// Package filter applies config-defined rules to fetched posts before they
// enter the run envelope.
package filter

import (
	"fmt"
	"log/slog"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/MuditaSai/redlens/internal/config"
	"github.com/MuditaSai/redlens/internal/reddit"
)

type rule struct {
	name    string
	action  string
	program *vm.Program
}

// Set is an ordered list of compiled filter rules.
type Set struct {
	rules  []rule
	logger *slog.Logger
}

// Compile builds a rule set from config. Rules are evaluated in order; the
// first one whose outcome drops a post wins.
func Compile(cfgs []config.FilterRule, logger *slog.Logger) (*Set, error) {
	if logger == nil {
		logger = slog.Default()
	}
	set := &Set{logger: logger}
	for _, cfg := range cfgs {
		if cfg.Name == "" || cfg.Rule == "" {
			return nil, fmt.Errorf("filter name and rule are required")
		}
		program, err := expr.Compile(cfg.Rule, expr.Env(ruleEnv(reddit.Post{})), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile filter %q: %w", cfg.Name, err)
		}
		set.rules = append(set.rules, rule{name: cfg.Name, action: cfg.Action, program: program})
	}
	return set, nil
}

// Len reports the number of compiled rules.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// Apply returns the posts that survive every rule. A rule that fails to
// evaluate keeps the post and logs a warning; a broken rule should not
// silently discard data.
func (s *Set) Apply(posts []reddit.Post) []reddit.Post {
	if s == nil || len(s.rules) == 0 {
		return posts
	}
	kept := make([]reddit.Post, 0, len(posts))
	for _, post := range posts {
		if s.keep(post) {
			kept = append(kept, post)
		}
	}
	return kept
}

func (s *Set) keep(post reddit.Post) bool {
	env := ruleEnv(post)
	for _, r := range s.rules {
		result, err := expr.Run(r.program, env)
		if err != nil {
			s.logger.Warn("filter rule failed, keeping post",
				slog.String("rule", r.name), slog.String("post_id", post.ID), slog.String("error", err.Error()))
			continue
		}
		matched, ok := result.(bool)
		if !ok {
			s.logger.Warn("filter rule did not return bool, keeping post",
				slog.String("rule", r.name), slog.String("post_id", post.ID))
			continue
		}
		switch r.action {
		case config.FilterActionDrop:
			if matched {
				return false
			}
		case config.FilterActionKeep:
			if !matched {
				return false
			}
		}
	}
	return true
}

func ruleEnv(post reddit.Post) map[string]interface{} {
	return map[string]interface{}{
		"title":        post.Title,
		"selftext":     post.SelfText,
		"author":       post.Author,
		"score":        post.Score,
		"num_comments": post.NumComments,
		"stickied":     post.Stickied,
		"nsfw":         post.NSFW,
		"spoiler":      post.Spoiler,
		"locked":       post.Locked,
		"is_self":      post.IsSelf,
		"subreddit":    post.Subreddit,
	}
}
