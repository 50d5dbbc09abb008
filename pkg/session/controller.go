// Package session holds per-session view policy: which bucket is visible
// and the one-shot auto-switch that runs when the near-term buckets are
// empty. State lives on the controller, never in globals, so a fresh
// process always starts clean.
package session

import (
	"sync"

	"tableflip.dev/agenda/pkg/categorize"
)

// Controller tracks the visible bucket for one session.
type Controller struct {
	mu           sync.Mutex
	visible      categorize.Bucket
	autoSwitched bool
}

// NewController starts a session on the Today bucket.
func NewController() *Controller {
	return &Controller{visible: categorize.Today}
}

// Visible returns the bucket the view should show.
func (c *Controller) Visible() categorize.Bucket {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}

// Select records a manual bucket choice. Manual selection is never fought
// by the auto-switch, which fires at most once per session.
func (c *Controller) Select(b categorize.Bucket) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visible = b
}

// Observe applies the auto-switch policy against a fresh recomputation:
// when today and tomorrow are both empty, this week has items, and the
// calendar integration has ever produced data, the visible bucket jumps to
// this_week, at most once per session. Returns whether the switch happened.
func (c *Controller) Observe(result categorize.Result, calendarActive bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.autoSwitched || !calendarActive {
		return false
	}
	if result.Counts[categorize.Today] > 0 || result.Counts[categorize.Tomorrow] > 0 {
		return false
	}
	if result.Counts[categorize.ThisWeek] == 0 {
		return false
	}
	c.visible = categorize.ThisWeek
	c.autoSwitched = true
	return true
}
