package indexing

import (
	"strings"
)

// Trigram is three consecutive bytes of a lowercased name.
type Trigram [3]byte

func (t Trigram) String() string { return string(t[:]) }

// Less orders trigrams bytewise.
func (t Trigram) Less(o Trigram) bool {
	for i := range t {
		if t[i] != o[i] {
			return t[i] < o[i]
		}
	}
	return false
}

// MinLiteralRun is the shortest literal run that can be turned into trigrams.
const MinLiteralRun = 3

// TrigramsOf returns the set of 3-byte windows of the lowercased text.
// Text shorter than three bytes yields an empty set.
func TrigramsOf(text string) map[Trigram]struct{} {
	lower := strings.ToLower(text)
	if len(lower) < 3 {
		return map[Trigram]struct{}{}
	}
	set := make(map[Trigram]struct{}, len(lower)-2)
	for i := 0; i+3 <= len(lower); i++ {
		set[Trigram{lower[i], lower[i+1], lower[i+2]}] = struct{}{}
	}
	return set
}

// appendTrigrams adds the windows of an already lowercased name to dst
// without allocating a set.
func appendTrigrams(dst []Trigram, lower string) []Trigram {
	for i := 0; i+3 <= len(lower); i++ {
		dst = append(dst, Trigram{lower[i], lower[i+1], lower[i+2]})
	}
	return dst
}

// ExtractLiteralRun returns the longest run of literal characters in a glob
// pattern, or false when no run reaches MinLiteralRun.
func ExtractLiteralRun(pattern string) (string, bool) {
	longest := ""
	for _, run := range literalRuns(pattern) {
		if len(run) > len(longest) {
			longest = run
		}
	}
	if len(longest) < MinLiteralRun {
		return "", false
	}
	return longest, true
}

// queryTrigrams is the union of the trigrams of every run long enough to
// contribute. Every such run appears verbatim in any name the pattern matches.
func queryTrigrams(pattern string) []Trigram {
	seen := make(map[Trigram]struct{})
	var out []Trigram
	for _, run := range literalRuns(pattern) {
		if len(run) < MinLiteralRun {
			continue
		}
		for t := range TrigramsOf(run) {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

// literalRuns splits a glob into the runs of characters that must match
// literally. Wildcards end a run. Bracket classes and brace alternations are
// skipped entirely; a backslash escapes the next byte into the run.
func literalRuns(pattern string) []string {
	var (
		runs       []string
		cur        strings.Builder
		braceDepth int
	)
	flush := func() {
		if cur.Len() > 0 {
			runs = append(runs, cur.String())
			cur.Reset()
		}
	}

	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch c {
		case '\\':
			if i+1 < len(pattern) {
				i++
				if braceDepth == 0 {
					cur.WriteByte(pattern[i])
				}
			}
		case '*', '?':
			flush()
		case '[':
			flush()
			i = skipClass(pattern, i)
		case '{':
			flush()
			braceDepth++
		case '}':
			flush()
			if braceDepth > 0 {
				braceDepth--
			}
		case ']':
			flush()
		default:
			if braceDepth == 0 {
				cur.WriteByte(c)
			}
		}
	}
	flush()
	return runs
}

// skipClass returns the index of the ']' closing the class opened at open.
// A ']' directly after '[', "[!" or "[^" is taken as a member.
func skipClass(pattern string, open int) int {
	i := open + 1
	if i < len(pattern) && (pattern[i] == '!' || pattern[i] == '^') {
		i++
	}
	if i < len(pattern) && pattern[i] == ']' {
		i++
	}
	for ; i < len(pattern); i++ {
		switch pattern[i] {
		case '\\':
			i++
		case ']':
			return i
		}
	}
	return len(pattern) - 1
}
