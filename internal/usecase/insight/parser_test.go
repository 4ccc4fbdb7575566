package insight

import "testing"

func TestCleanInsights(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "  <p>Hi</p>\n", "<p>Hi</p>"},
		{"html fence", "```html\n<p>Hi</p>\n```", "<p>Hi</p>"},
		{"bare fence", "```\n**Great** work\n```\n", "**Great** work"},
		{"fence without newline", "```<p>Hi</p>```", "<p>Hi</p>"},
		{"unterminated fence", "```markdown\nKeep going", "Keep going"},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanInsights(tt.in); got != tt.want {
				t.Errorf("cleanInsights(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
