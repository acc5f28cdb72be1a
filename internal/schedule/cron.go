// Package schedule drives daemon mode: a cron expression turns into a tick
// channel, and every tick is one collection run.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

type Cron struct {
	spec     string
	timezone string
	cron     *cron.Cron
	ticks    chan time.Time
}

func New(spec, timezone string) *Cron {
	return &Cron{spec: spec, timezone: timezone}
}

func (c *Cron) Validate() error {
	if c.spec == "" {
		return fmt.Errorf("cron expression is required")
	}
	if _, err := cron.ParseStandard(c.spec); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", c.spec, err)
	}
	if c.timezone != "" {
		if _, err := time.LoadLocation(c.timezone); err != nil {
			return fmt.Errorf("invalid timezone: %w", err)
		}
	}
	return nil
}

// Start begins firing ticks. A tick is dropped when the previous run is
// still being consumed; overlapping collections are never wanted.
func (c *Cron) Start(ctx context.Context) (<-chan time.Time, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	location := time.UTC
	if c.timezone != "" {
		tz, err := time.LoadLocation(c.timezone)
		if err != nil {
			return nil, err
		}
		location = tz
	}

	c.ticks = make(chan time.Time, 1)
	c.cron = cron.New(cron.WithLocation(location))
	_, err := c.cron.AddFunc(c.spec, func() {
		select {
		case c.ticks <- time.Now().UTC():
		default:
		}
	})
	if err != nil {
		return nil, err
	}

	c.cron.Start()

	go func() {
		<-ctx.Done()
		_ = c.Stop()
	}()

	return c.ticks, nil
}

func (c *Cron) Stop() error {
	if c.cron != nil {
		ctx := c.cron.Stop()
		<-ctx.Done()
	}
	if c.ticks != nil {
		close(c.ticks)
	}
	return nil
}
