package utils

import "testing"

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "  SOMMATION DE PAYER  ", "SOMMATION DE PAYER"},
		{"markdown fence", "```markdown\n## ACTE\nCorps\n```", "## ACTE\nCorps"},
		{"bare fence", "```\nCorps\n```\n", "Corps"},
		{"json fence", "```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"unterminated", "```text\nCorps", "Corps"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFence(tt.input); got != tt.want {
				t.Errorf("StripCodeFence(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
