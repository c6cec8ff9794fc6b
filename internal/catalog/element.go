package catalog

import "sync"

// Element is a rendered product listing entry that can carry an id resolved
// earlier, so a later purchase can skip the name lookup.
type Element interface {
	CachedID() string
	SetCachedID(id string)
	CachedName() string
	Title() string
}

// Card is the in-memory Element used by the CLI listing.
type Card struct {
	mu    sync.Mutex
	id    string
	name  string
	title string
}

func NewCard(id, name, title string) *Card {
	return &Card{id: id, name: name, title: title}
}

func (c *Card) CachedID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

func (c *Card) SetCachedID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.id = id
}

func (c *Card) CachedName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name
}

func (c *Card) Title() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.title
}
