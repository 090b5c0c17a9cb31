package vault

import (
	"context"
	"errors"
	"testing"
)

func TestParseLink(t *testing.T) {
	tests := []struct{ in, want string }{
		{"[[My Note]]", "My Note"},
		{"[[My Note|display]]", "My Note"},
		{"[[My Note#Heading]]", "My Note"},
		{"[[ Spaced ]]", "Spaced"},
		{"not a link", ""},
	}
	for _, tt := range tests {
		if got := ParseLink(tt.in); got != tt.want {
			t.Errorf("ParseLink(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveLinkExact(t *testing.T) {
	v := NewFS(t.TempDir())
	ctx := context.Background()

	v.Create(ctx, "projects/Roadmap.md", "x")
	v.Create(ctx, "other.md", "x")

	path, err := v.ResolveLink(ctx, "[[Roadmap]]", "")
	if err != nil {
		t.Fatalf("ResolveLink failed: %v", err)
	}
	if path != "projects/Roadmap.md" {
		t.Errorf("path = %q", path)
	}
}

func TestResolveLinkPrefersSameFolder(t *testing.T) {
	v := NewFS(t.TempDir())
	ctx := context.Background()

	v.Create(ctx, "a/Note.md", "x")
	v.Create(ctx, "b/Note.md", "x")

	path, err := v.ResolveLink(ctx, "[[Note]]", "b/origin.md")
	if err != nil {
		t.Fatalf("ResolveLink failed: %v", err)
	}
	if path != "b/Note.md" {
		t.Errorf("path = %q, want same-folder match", path)
	}
}

func TestResolveLinkByAlias(t *testing.T) {
	v := NewFS(t.TempDir())
	ctx := context.Background()

	v.Create(ctx, "Standup Notes.md", "---\naliases:\n  - Daily\n---\nx")

	path, err := v.ResolveLink(ctx, "[[Daily]]", "")
	if err != nil {
		t.Fatalf("ResolveLink failed: %v", err)
	}
	if path != "Standup Notes.md" {
		t.Errorf("path = %q", path)
	}
}

func TestResolveLinkFuzzy(t *testing.T) {
	v := NewFS(t.TempDir())
	ctx := context.Background()

	v.Create(ctx, "Architecture.md", "x")

	path, err := v.ResolveLink(ctx, "[[Architectur]]", "")
	if err != nil {
		t.Fatalf("ResolveLink failed: %v", err)
	}
	if path != "Architecture.md" {
		t.Errorf("path = %q", path)
	}
}

func TestResolveLinkMissing(t *testing.T) {
	v := NewFS(t.TempDir())

	_, err := v.ResolveLink(context.Background(), "[[Nothing Like This Exists]]", "")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMakeLink(t *testing.T) {
	if got := MakeLink("history/My Session.md"); got != "[[My Session]]" {
		t.Errorf("MakeLink = %q", got)
	}
}
