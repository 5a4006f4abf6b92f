package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlocklist_NormalizesAndDeduplicates(t *testing.T) {
	bl := NewBlocklist([]string{" Kill ", "kill", "", "SEX"}, []string{"sex", "a.b"})
	assert.Equal(t, []string{"kill", "sex", "a.b"}, bl.Terms())
}

func TestBlocklist_EscapesMetacharacters(t *testing.T) {
	bl := NewBlocklist([]string{"a.b", "c++"})

	_, ok := bl.Match("this is axb here")
	assert.False(t, ok, "dot must be literal")

	term, ok := bl.Match("this is a.b here")
	assert.True(t, ok)
	assert.Equal(t, "a.b", term)

	term, ok = bl.Match("I love c++")
	assert.True(t, ok)
	assert.Equal(t, "c++", term)
}

func TestBlocklist_Boundaries(t *testing.T) {
	bl := NewBlocklist([]string{"kill", "kill myself"})

	cases := map[string]bool{
		"kill":                  true,
		"kill it":               true,
		"go kill":               true,
		"please\tkill\nnow":     true,
		"skill":                 false,
		"killer":                false,
		"overkill":              false,
		"I want to kill myself": true,
		"kill, then":            false,
		"self-kill":             false,
	}
	for text, want := range cases {
		_, got := bl.Match(text)
		assert.Equal(t, want, got, "text %q", text)
	}
}

func TestBlocklist_UnicodeSeparators(t *testing.T) {
	bl := NewBlocklist([]string{"kill", "kill myself"})

	cases := []struct {
		text string
		want string
		ok   bool
	}{
		{"kill\u00a0the boss", "kill", true},
		{"kill\vthe boss", "kill", true},
		{"to\u3000kill\u3000the", "kill", true},
		{"to\u2003kill", "kill", true},
		{"to\u0085kill", "kill", true},
		{"I want to kill\u00a0myself", "kill", true},
		{"\u00a0skill\u00a0", "", false},
		{"kill\u00a0myself", "kill", true},
	}
	for _, tc := range cases {
		term, ok := bl.Match(tc.text)
		assert.Equal(t, tc.ok, ok, "text %q", tc.text)
		assert.Equal(t, tc.want, term, "text %q", tc.text)
	}

	phrase := NewBlocklist([]string{"kill myself"})
	term, ok := phrase.Match("I will kill\u3000myself")
	assert.True(t, ok)
	assert.Equal(t, "kill myself", term)
}

func TestBlocklist_FirstTermWins(t *testing.T) {
	bl := NewBlocklist([]string{"murder", "kill"})
	term, ok := bl.Match("kill or murder")
	assert.True(t, ok)
	assert.Equal(t, "murder", term)
}

func TestBlocklist_Nil(t *testing.T) {
	var bl *Blocklist
	_, ok := bl.Match("kill")
	assert.False(t, ok)
}

func TestParseTerms(t *testing.T) {
	assert.Equal(t, []string{"foo", "bar baz"}, ParseTerms(" foo, ,bar baz ,"))
	assert.Nil(t, ParseTerms(""))
}
