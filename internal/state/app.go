package state

import (
	"context"
	"fmt"

	"github.com/waylis/waycli/internal/api"
	"github.com/waylis/waycli/internal/chat"
	"github.com/waylis/waycli/internal/config"
	"github.com/waylis/waycli/internal/settings"
)

// App is the top-level application context: it owns the API client and
// every state container, and wires active-chat changes into timeline
// resets.
type App struct {
	API      *api.Client
	Chats    *ChatList
	Timeline *Timeline
	Catalog  *Catalog
	Store    *settings.Store

	// Info is the server branding merged with defaults, resolved once
	// by LoadResources and immutable afterwards.
	Info chat.AppInfo
	// PageLimit is the effective page size after server config
	// resolution.
	PageLimit int
}

// defaultInfo mirrors the server's own fallback branding.
var defaultInfo = chat.AppInfo{
	Name:        "Waylis",
	Description: "To start interacting with the app, pick a command.",
}

// NewApp builds the application context from resolved configuration.
func NewApp(cfg *config.Config, store *settings.Store) *App {
	client := api.NewClient(cfg.ServerURL, cfg.APIPrefix, cfg.IdentityToken)

	app := &App{
		API:       client,
		Store:     store,
		Info:      defaultInfo,
		PageLimit: cfg.PageLimit,
	}
	app.Chats = NewChatList(client, store, cfg.PageLimit)
	app.Timeline = NewTimeline(client, cfg.PageLimit)
	app.Catalog = NewCatalog(client)

	app.Chats.OnActiveChange = func(active *chat.Chat) {
		id := ""
		if active != nil {
			id = active.ID
		}
		app.Timeline.Reset(id)
	}
	return app
}

// LoadResources performs the startup loads: server config, command
// catalog and the first chat page. Server config resolution happens
// exactly once; the merged result is treated as immutable for the
// session.
func (a *App) LoadResources(ctx context.Context) error {
	srvCfg, err := a.API.ServerConfig(ctx)
	if err != nil {
		return fmt.Errorf("load server config: %w", err)
	}
	a.Info = mergeInfo(defaultInfo, srvCfg.App)
	if srvCfg.DefaultPageLimit > 0 {
		a.PageLimit = srvCfg.DefaultPageLimit
	}

	if _, err := a.Catalog.Fetch(ctx); err != nil {
		return err
	}
	if _, err := a.Chats.FetchChats(ctx); err != nil {
		return err
	}
	return nil
}

func mergeInfo(base, over chat.AppInfo) chat.AppInfo {
	if over.Name != "" {
		base.Name = over.Name
	}
	if over.Description != "" {
		base.Description = over.Description
	}
	if over.FaviconURL != "" {
		base.FaviconURL = over.FaviconURL
	}
	return base
}
