package domain

import "testing"

func TestTitleFromURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"pdf path", "https://example.com/docs/brochure.pdf", "brochure.pdf"},
		{"escaped segment", "https://example.com/docs/annual%20report.pdf", "annual report.pdf"},
		{"no path", "https://example.com", "example.com"},
		{"trailing slash", "https://example.com/docs/", "docs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TitleFromURL(tt.url); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
