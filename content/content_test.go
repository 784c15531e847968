package content

import (
	"testing"
	"time"
)

func TestStatusPublic(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{"", true},
		{StatusPublished, true},
		{StatusEdited, true},
		{StatusDraft, false},
		{StatusAIGenerated, false},
	}
	for _, tt := range tests {
		if got := tt.status.Public(); got != tt.want {
			t.Errorf("Status(%q).Public() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestArticleDateFallback(t *testing.T) {
	pub := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	upd := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		a    Article
		want time.Time
	}{
		{"published wins", Article{PublishedAt: pub, UpdatedAt: upd, CreatedAt: created}, pub},
		{"updated when unpublished", Article{UpdatedAt: upd, CreatedAt: created}, upd},
		{"created as last resort", Article{CreatedAt: created}, created},
		{"all missing", Article{}, time.Time{}},
	}
	for _, tt := range tests {
		if got := tt.a.Date(); !got.Equal(tt.want) {
			t.Errorf("%s: Date() = %v, want %v", tt.name, got, tt.want)
		}
	}
}
