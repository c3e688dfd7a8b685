package sanitizer

import "testing"

func TestSanitizeFreeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "extra mats and water", "extra mats and water"},
		{"trims edges", "  padded  ", "padded"},
		{"collapses whitespace", "two\t\tlanes\n reserved", "two lanes reserved"},
		{"drops control characters", "lane\x00 one\x1b", "lane one"},
		{"empty stays empty", "", ""},
		{"whitespace only collapses to empty", " \n\t ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFreeText(tt.in); got != tt.want {
				t.Errorf("SanitizeFreeText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
