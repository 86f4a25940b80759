package indexing

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func trigramStrings(set map[Trigram]struct{}) []string {
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t.String())
	}
	sort.Strings(out)
	return out
}

func TestTrigramsOf(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "empty", text: "", want: []string{}},
		{name: "two chars", text: "ab", want: []string{}},
		{name: "exactly three", text: "abc", want: []string{"abc"}},
		{name: "windows", text: "main.rs", want: []string{".rs", "ain", "in.", "mai", "n.r"}},
		{name: "lowercased", text: "README", want: []string{"adm", "dme", "ead", "rea"}},
		{name: "repeats collapse", text: "aaaa", want: []string{"aaa"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, trigramStrings(TrigramsOf(tt.text)))
		})
	}
}

func TestTrigramsOfIsDeterministic(t *testing.T) {
	assert.Equal(t, TrigramsOf("Cargo.toml"), TrigramsOf("Cargo.toml"))
	assert.Equal(t, TrigramsOf("CARGO.TOML"), TrigramsOf("cargo.toml"))
}

func TestExtractLiteralRun(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
		ok      bool
	}{
		{pattern: "*.rs", want: ".rs", ok: true},
		{pattern: "*.c", ok: false},
		{pattern: "*", ok: false},
		{pattern: "??", ok: false},
		{pattern: "main.rs", want: "main.rs", ok: true},
		{pattern: "test_*_spec.go", want: "_spec.go", ok: true},
		{pattern: "*.{js,ts}", ok: false},
		{pattern: "report[0-9][0-9].pdf", want: "report", ok: true},
		{pattern: "[abcdef]x", ok: false},
		{pattern: "a\\*bc", want: "a*bc", ok: true},
		{pattern: "{alpha,beta}.txt", want: ".txt", ok: true},
		{pattern: "[]abc]de", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got, ok := ExtractLiteralRun(tt.pattern)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQueryTrigramsCoverEveryLongRun(t *testing.T) {
	got := make(map[string]bool)
	for _, tri := range queryTrigrams("lib*_test.go") {
		got[tri.String()] = true
	}
	for _, want := range []string{"lib", "_te", "tes", "est", "st.", "t.g", ".go"} {
		assert.True(t, got[want], want)
	}
	assert.False(t, got["b_t"], "trigrams must not span a wildcard")
}

func TestTrigramLess(t *testing.T) {
	assert.True(t, Trigram{'a', 'b', 'c'}.Less(Trigram{'a', 'b', 'd'}))
	assert.False(t, Trigram{'a', 'b', 'c'}.Less(Trigram{'a', 'b', 'c'}))
	assert.False(t, Trigram{'b', 0, 0}.Less(Trigram{'a', 'z', 'z'}))
}
