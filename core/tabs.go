package core

import (
	"sort"

	"pkt.systems/notepad/schema"
)

// CloseOutcome reports what TabCollection.Close did.
type CloseOutcome int

const (
	// CloseUnknown means the id was not in the collection.
	CloseUnknown CloseOutcome = iota
	// CloseReset means the sole tab was cleared in place.
	CloseReset
	// CloseRemoved means the tab was removed.
	CloseRemoved
)

// TabCollection owns the ordered tabs and the active pointer.
// It always holds at least one tab.
type TabCollection struct {
	tabs   []*tab
	active schema.TabID
}

// NewTabCollection returns a collection with a single untitled tab.
func NewTabCollection() *TabCollection {
	first := newTab(1)
	return &TabCollection{tabs: []*tab{first}, active: first.ID}
}

// Len returns the number of tabs.
func (c *TabCollection) Len() int {
	return len(c.tabs)
}

// ActiveID returns the id of the active tab.
func (c *TabCollection) ActiveID() schema.TabID {
	return c.active
}

// Active returns the active tab.
func (c *TabCollection) Active() *tab {
	if t := c.get(c.active); t != nil {
		return t
	}
	// unreachable while the invariants hold
	c.active = c.tabs[len(c.tabs)-1].ID
	return c.tabs[len(c.tabs)-1]
}

// IDs returns tab ids in display order.
func (c *TabCollection) IDs() []schema.TabID {
	ids := make([]schema.TabID, 0, len(c.tabs))
	for _, t := range c.tabs {
		ids = append(ids, t.ID)
	}
	return ids
}

// Add appends a tab with the lowest unused id and activates it.
func (c *TabCollection) Add() *tab {
	t := newTab(c.nextFreeID())
	c.tabs = append(c.tabs, t)
	c.active = t.ID
	return t
}

// Close removes the tab with id, or resets it in place when it is the only
// tab. Closing the active tab activates the last remaining tab.
func (c *TabCollection) Close(id schema.TabID) CloseOutcome {
	idx := c.index(id)
	if idx < 0 {
		return CloseUnknown
	}
	if len(c.tabs) == 1 {
		c.tabs[0].reset()
		return CloseReset
	}
	c.tabs = append(c.tabs[:idx], c.tabs[idx+1:]...)
	if id == c.active {
		c.active = c.tabs[len(c.tabs)-1].ID
	}
	return CloseRemoved
}

// SwitchTo activates id. Unknown ids are ignored.
func (c *TabCollection) SwitchTo(id schema.TabID) bool {
	if c.index(id) < 0 {
		return false
	}
	c.active = id
	return true
}

// UpdateActive applies fn to the active tab.
func (c *TabCollection) UpdateActive(fn func(*tab)) {
	fn(c.Active())
}

// Get returns the tab with id, if present.
func (c *TabCollection) Get(id schema.TabID) (*tab, bool) {
	t := c.get(id)
	return t, t != nil
}

// Snapshots returns transport views of every tab in order.
func (c *TabCollection) Snapshots() []schema.TabSnapshot {
	out := make([]schema.TabSnapshot, 0, len(c.tabs))
	for _, t := range c.tabs {
		out = append(out, t.Snapshot(t.ID == c.active))
	}
	return out
}

func (c *TabCollection) get(id schema.TabID) *tab {
	if idx := c.index(id); idx >= 0 {
		return c.tabs[idx]
	}
	return nil
}

func (c *TabCollection) index(id schema.TabID) int {
	for i, t := range c.tabs {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (c *TabCollection) nextFreeID() schema.TabID {
	ids := c.IDs()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	next := schema.TabID(1)
	for _, id := range ids {
		if id == next {
			next++
		} else if id > next {
			break
		}
	}
	return next
}
