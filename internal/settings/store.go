// Package settings persists user preferences and navigation state
// across sessions: display settings in settings.json, the last active
// chat id in state.json.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Settings are the user's display preferences.
type Settings struct {
	AccentColor      string `json:"accentColor"`
	MaxMessageWidth  int    `json:"maxMessageWidth"`
	ShowMessageTimes bool   `json:"showMessageTimes"`
}

// navState mirrors the browser client's navigable address: it survives
// restarts so the same chat is restored.
type navState struct {
	ActiveChatID string `json:"activeChatID"`
}

// DefaultSettings returns the out-of-the-box preferences.
func DefaultSettings() Settings {
	return Settings{
		AccentColor:      "green",
		MaxMessageWidth:  76,
		ShowMessageTimes: true,
	}
}

// Store is a file-backed settings and navigation state store.
type Store struct {
	dir string

	mu       sync.Mutex
	settings Settings
	nav      navState
}

// NewStore loads (or initializes) the store rooted at dir.
func NewStore(dir string) *Store {
	s := &Store{dir: dir, settings: DefaultSettings()}

	if data, err := os.ReadFile(s.settingsPath()); err == nil {
		var loaded Settings
		if json.Unmarshal(data, &loaded) == nil {
			if loaded.AccentColor == "" {
				loaded.AccentColor = DefaultSettings().AccentColor
			}
			if loaded.MaxMessageWidth <= 0 {
				loaded.MaxMessageWidth = DefaultSettings().MaxMessageWidth
			}
			s.settings = loaded
		}
	}
	if data, err := os.ReadFile(s.statePath()); err == nil {
		json.Unmarshal(data, &s.nav)
	}
	return s
}

// Settings returns the current preferences.
func (s *Store) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// SetAccentColor updates and persists the accent color.
func (s *Store) SetAccentColor(color string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.AccentColor = color
	return s.saveSettings()
}

// SetMaxMessageWidth updates and persists the message render width.
func (s *Store) SetMaxMessageWidth(width int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.MaxMessageWidth = width
	return s.saveSettings()
}

// SetShowMessageTimes updates and persists the timestamp toggle.
func (s *Store) SetShowMessageTimes(show bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.ShowMessageTimes = show
	return s.saveSettings()
}

// ActiveChatID returns the persisted last active chat id.
func (s *Store) ActiveChatID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.ActiveChatID
}

// SetActiveChatID persists the active chat id. An empty id clears it.
func (s *Store) SetActiveChatID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nav.ActiveChatID = id
	return s.saveFile(s.statePath(), s.nav)
}

func (s *Store) saveSettings() error {
	return s.saveFile(s.settingsPath(), s.settings)
}

func (s *Store) saveFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (s *Store) settingsPath() string { return filepath.Join(s.dir, "settings.json") }
func (s *Store) statePath() string    { return filepath.Join(s.dir, "state.json") }
