package settings

import (
	"testing"
)

func TestStoreDefaults(t *testing.T) {
	s := NewStore(t.TempDir())
	got := s.Settings()
	want := DefaultSettings()
	if got != want {
		t.Errorf("defaults: got %+v, want %+v", got, want)
	}
	if s.ActiveChatID() != "" {
		t.Errorf("active chat: got %q, want empty", s.ActiveChatID())
	}
}

func TestStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()

	s := NewStore(dir)
	if err := s.SetAccentColor("blue"); err != nil {
		t.Fatalf("SetAccentColor: %v", err)
	}
	if err := s.SetMaxMessageWidth(100); err != nil {
		t.Fatalf("SetMaxMessageWidth: %v", err)
	}
	if err := s.SetShowMessageTimes(false); err != nil {
		t.Fatalf("SetShowMessageTimes: %v", err)
	}
	if err := s.SetActiveChatID("chat-7"); err != nil {
		t.Fatalf("SetActiveChatID: %v", err)
	}

	// A fresh store over the same directory restores everything.
	reloaded := NewStore(dir)
	got := reloaded.Settings()
	if got.AccentColor != "blue" || got.MaxMessageWidth != 100 || got.ShowMessageTimes {
		t.Errorf("reloaded settings: got %+v", got)
	}
	if reloaded.ActiveChatID() != "chat-7" {
		t.Errorf("reloaded active chat: got %q", reloaded.ActiveChatID())
	}
}

func TestStoreClearActiveChat(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	s.SetActiveChatID("c1")
	s.SetActiveChatID("")
	if NewStore(dir).ActiveChatID() != "" {
		t.Error("clearing the active chat must persist")
	}
}
