package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "lowercases and trims", input: "  Hello   WORLD  ", want: "hello world"},
		{name: "collapses exclamation marks", input: "Fix it!!!", want: "fix it!"},
		{name: "collapses question marks", input: "Why??", want: "why?"},
		{name: "collapses long ellipsis", input: "wait.....", want: "wait..."},
		{name: "keeps two dots", input: "wait..", want: "wait.."},
		{name: "keeps single punctuation", input: "Hi! OK? Done.", want: "hi! ok? done."},
		{name: "collapses tabs and newlines", input: "line one\n\n\tline two", want: "line one line two"},
		{name: "collapses unicode spaces", input: "a  b", want: "a b"},
		{name: "empty", input: "", want: ""},
		{name: "whitespace only", input: " \t\n ", want: ""},
		{name: "invalid utf8", input: "bad \xff text", want: ""},
		{name: "example ticket", input: "The app is crashing frequently after update.", want: "the app is crashing frequently after update."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"Great support, my issue was resolved quickly!",
		"WHAT??? !!! ... .... ..",
		"mixed \t\n whitespace   and!!punctuation??",
		"ÄÖÜ Straße İstanbul",
		"! ! ! ? ? ?",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func FuzzNormalize(f *testing.F) {
	f.Add("The app is crashing frequently after update.")
	f.Add("Great support!!!")
	f.Add("....???!!!")
	f.Add("")

	f.Fuzz(func(t *testing.T, s string) {
		once := Normalize(s)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent: %q -> %q -> %q", s, once, twice)
		}
	})
}
