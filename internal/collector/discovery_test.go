package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/MuditaSai/redlens/internal/config"
	"github.com/MuditaSai/redlens/internal/reddit"
	redditmock "github.com/MuditaSai/redlens/internal/reddit/mock"
)

func TestFilterDiscovered(t *testing.T) {
	subs := []reddit.SubredditInfo{
		{Name: "technology", Subscribers: 5000000},
		{Name: "spicy_nsfw_stuff", Subscribers: 900000},
		{Name: "grownups", Subscribers: 200000, NSFW: true},
		{Name: "tinyclub", Subscribers: 500},
		{Name: "science", Subscribers: 3000000},
		{Name: "programmingcirclejerk", Subscribers: 400000},
		{Name: "books", Subscribers: 1000000},
	}

	names := filterDiscovered(subs, config.Discovery{Count: 3, MinSubscribers: 10000})
	want := []string{"technology", "science", "books"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
}

func TestFilterDiscoveredCustomKeywords(t *testing.T) {
	subs := []reddit.SubredditInfo{
		{Name: "cryptomoon", Subscribers: 100000},
		{Name: "woodworking", Subscribers: 100000},
	}

	names := filterDiscovered(subs, config.Discovery{Count: 5, ExcludeKeywords: []string{"crypto"}})
	if len(names) != 1 || names[0] != "woodworking" {
		t.Fatalf("names = %v, want [woodworking]", names)
	}
}

func TestResolveTargetsUsesStaticListWhenDiscoveryDisabled(t *testing.T) {
	client := &redditmock.Client{
		PopularFn: func(ctx context.Context, limit int) ([]reddit.SubredditInfo, error) {
			t.Fatalf("popular should not be called")
			return nil, nil
		},
	}

	c, err := New(client, testDoc("golang", "science"), Options{})
	if err != nil {
		t.Fatalf("failed to create collector: %v", err)
	}
	targets := c.resolveTargets(context.Background())
	if len(targets) != 2 || targets[0] != "golang" {
		t.Fatalf("targets = %v", targets)
	}
}

func TestResolveTargetsDiscoversPopularSubreddits(t *testing.T) {
	doc := testDoc("fallback")
	doc.Discovery = config.Discovery{Enabled: true, Count: 2, MinSubscribers: 100}

	var requested int
	client := &redditmock.Client{
		PopularFn: func(ctx context.Context, limit int) ([]reddit.SubredditInfo, error) {
			requested = limit
			return []reddit.SubredditInfo{
				{Name: "technology", Subscribers: 1000},
				{Name: "science", Subscribers: 1000},
				{Name: "books", Subscribers: 1000},
			}, nil
		},
	}

	c, err := New(client, doc, Options{})
	if err != nil {
		t.Fatalf("failed to create collector: %v", err)
	}
	targets := c.resolveTargets(context.Background())
	if requested != 4 {
		t.Fatalf("requested limit = %d, want 4", requested)
	}
	if len(targets) != 2 || targets[0] != "technology" || targets[1] != "science" {
		t.Fatalf("targets = %v", targets)
	}
}

func TestResolveTargetsFallsBackOnDiscoveryError(t *testing.T) {
	doc := testDoc("fallback")
	doc.Discovery = config.Discovery{Enabled: true, Count: 10}

	client := &redditmock.Client{
		PopularFn: func(ctx context.Context, limit int) ([]reddit.SubredditInfo, error) {
			return nil, errors.New("listing unavailable")
		},
	}

	c, err := New(client, doc, Options{})
	if err != nil {
		t.Fatalf("failed to create collector: %v", err)
	}
	targets := c.resolveTargets(context.Background())
	if len(targets) != 1 || targets[0] != "fallback" {
		t.Fatalf("targets = %v, want [fallback]", targets)
	}
}
