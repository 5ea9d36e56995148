package state

import (
	"context"
	"fmt"
	"sync"

	"github.com/waylis/waycli/internal/api"
	"github.com/waylis/waycli/internal/chat"
)

// Catalog holds the static command catalog, fetched once at startup.
type Catalog struct {
	api *api.Client

	mu       sync.Mutex
	commands []chat.Command
}

// NewCatalog creates an empty command catalog.
func NewCatalog(client *api.Client) *Catalog {
	return &Catalog{api: client}
}

// Fetch loads the catalog from the server.
func (c *Catalog) Fetch(ctx context.Context) ([]chat.Command, error) {
	cmds, err := c.api.Commands(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch commands: %w", err)
	}
	c.mu.Lock()
	c.commands = cmds
	c.mu.Unlock()
	return cmds, nil
}

// Commands returns a snapshot of the catalog.
func (c *Catalog) Commands() []chat.Command {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]chat.Command, len(c.commands))
	copy(out, c.commands)
	return out
}

// Label resolves a command value to its display label; unknown values
// render as "Unknown command".
func (c *Catalog) Label(value string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, cmd := range c.commands {
		if cmd.Value == value {
			return cmd.DisplayLabel()
		}
	}
	return "Unknown command"
}
