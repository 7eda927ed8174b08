package feed

import (
	"reflect"
	"strings"
	"testing"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"Podcasts", "Podcasts"},
		{"My Shows", "My+Shows"},
		{"Café Émission", "Cafe+Emission"},
		{"Talks & Shows", "Talks+%26+Shows"},
		{"  padded  ", "padded"},
		{"日本語", "putcast"},
		{"", "putcast"},
		{"Audio/Video", "Audio+Video"},
		{`Movies\2024`, "Movies+2024"},
		{"/", "putcast"},
		{"a/b?c", "a+b%3Fc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Slug(tt.name)
			if got != tt.expected {
				t.Errorf("Expected slug '%s', got '%s'", tt.expected, got)
			}
			if strings.Contains(got, "/") || strings.Contains(got, "%2F") || strings.Contains(got, "%5C") {
				t.Errorf("Expected a single path segment, got '%s'", got)
			}
		})
	}
}

func TestNormalizeFolderIDs(t *testing.T) {
	got := NormalizeFolderIDs([]string{" 42", "7", "", "42", "1001 ", "  "})
	expected := []string{"42", "7", "1001"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}

	if got := NormalizeFolderIDs(nil); len(got) != 0 {
		t.Errorf("Expected no folder ids, got %v", got)
	}
}
