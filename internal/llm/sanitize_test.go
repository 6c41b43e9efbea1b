package llm

import "testing"

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "fenced with prose",
			in:   "Here is the data:\n```json\n[{\"a\":1},]\n```\nThanks",
			want: `[{"a":1}]`,
		},
		{
			name: "bare fence",
			in:   "```\n[1, 2]\n```",
			want: "[1, 2]",
		},
		{
			name: "upper case language tag",
			in:   "```JSON\n[]\n```",
			want: "[]",
		},
		{
			name: "smart quotes",
			in:   "[{“q”: “Türkiye’nin”}]",
			want: `[{"q": "Türkiye'nin"}]`,
		},
		{
			name: "trailing comma in object",
			in:   `[{"a": 1, "b": 2 , }]`,
			want: `[{"a": 1, "b": 2 }]`,
		},
		{
			name: "trailing comma with newline",
			in:   "[{\"a\":1},\n]",
			want: `[{"a":1}]`,
		},
		{
			name: "no brackets",
			in:   "  sorry, I cannot help,} ",
			want: "sorry, I cannot help}",
		},
		{
			name: "reversed brackets left alone",
			in:   "] nothing [",
			want: "] nothing [",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.in); got != tt.want {
				t.Errorf("Sanitize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		`[{"a":1}]`,
		`[{"question":"x","options":{"A":"1","B":"2","C":"3","D":"4","E":"5"},"answer":"A","explanation":"e"}]`,
		"[]",
		"Here is the data:\n```json\n[{\"a\":1},]\n```\nThanks",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		if twice := Sanitize(once); twice != once {
			t.Errorf("Sanitize not idempotent: %q -> %q -> %q", in, once, twice)
		}
	}
}
