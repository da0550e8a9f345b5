package textfilter

import "testing"

func TestClean(t *testing.T) {
	f := New()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "clean text unchanged",
			in:   "You walk away and call your support person.",
			want: "You walk away and call your support person.",
		},
		{
			name: "lowercase replacement",
			in:   "that party was a damn mistake",
			want: "that party was a dang mistake",
		},
		{
			name: "title case preserved",
			in:   "Damn, that was close.",
			want: "Dang, that was close.",
		},
		{
			name: "uppercase preserved",
			in:   "HELL no",
			want: "HECK no",
		},
		{
			name: "word boundaries respected",
			in:   "the class passed the assessment",
			want: "the class passed the assessment",
		},
		{
			name: "multiple words",
			in:   "this crap is bullshit",
			want: "this crud is baloney",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
