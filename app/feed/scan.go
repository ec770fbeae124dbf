package feed

import (
	"sort"
	"strings"
)

// Low-level scanning helpers for the post tag grammar. All positions are byte offsets;
// every delimiter the grammar cares about is ASCII, so multi-byte names pass through intact.

var reservedWords = []string{"guild", "title", "client"}

type span struct {
	start, end int
}

// mention is an "@word" token. word is the run of [A-Za-z0-9_] after the '@'.
type mention struct {
	span
	word string
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', '\v':
		return true
	}
	return false
}

func isWordByte(c byte) bool {
	return c == '_' || ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func skipSpaces(s string, i int) int {
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return i
}

// isReserved matches whole words only: "@Guildhall" is a person, "@guild" is not.
func isReserved(word string) bool {
	for _, reserved := range reservedWords {
		if strings.EqualFold(word, reserved) {
			return true
		}
	}
	return false
}

// isDashAt reports whether s[i] is a '-' standing alone, i.e. followed by whitespace or the end.
func isDashAt(s string, i int) bool {
	return i < len(s) && s[i] == '-' && (i+1 == len(s) || isSpace(s[i+1]))
}

func scanMentions(s string) []mention {
	var mentions []mention
	for i := 0; i < len(s); i++ {
		if s[i] != '@' {
			continue
		}
		j := i + 1
		for j < len(s) && isWordByte(s[j]) {
			j++
		}
		if j == i+1 {
			continue
		}
		mentions = append(mentions, mention{span: span{i, j}, word: s[i+1 : j]})
		i = j - 1
	}
	return mentions
}

// personMentions returns the words of every mention that is not a reserved keyword, in order.
func personMentions(s string) []string {
	var words []string
	for _, m := range scanMentions(s) {
		if !isReserved(m.word) {
			words = append(words, m.word)
		}
	}
	return words
}

// indexClause finds "@<keyword>" (case-insensitive) followed by whitespace, starting at from.
func indexClause(s, keyword string, from int) int {
	n := len(keyword) + 1
	for i := from; i+n < len(s); i++ {
		if s[i] != '@' || !strings.EqualFold(s[i+1:i+n], keyword) {
			continue
		}
		if isSpace(s[i+n]) {
			return i
		}
	}
	return -1
}

// colonTag finds the first "@<keyword>:<value>" tag whose value is non-blank. The value runs
// to the next '@' or newline.
func colonTag(s, keyword string) (string, span, bool) {
	n := len(keyword) + 2
	for i := 0; i+n <= len(s); i++ {
		if s[i] != '@' || !strings.EqualFold(s[i+1:i+n-1], keyword) || s[i+n-1] != ':' {
			continue
		}
		end := i + n
		for end < len(s) && s[end] != '@' && s[end] != '\n' {
			end++
		}
		if value := strings.TrimSpace(s[i+n : end]); value != "" {
			return value, span{i, end}, true
		}
	}
	return "", span{}, false
}

func stripColonTags(s string) string {
	for _, keyword := range []string{"client", "title"} {
		for {
			_, sp, ok := colonTag(s, keyword)
			if !ok {
				break
			}
			s = cut(s, sp)
		}
	}
	return s
}

func stripMentions(s string) string {
	mentions := scanMentions(s)
	spans := make([]span, len(mentions))
	for i, m := range mentions {
		spans[i] = m.span
	}
	return cut(s, spans...)
}

// cut removes non-overlapping spans from s.
func cut(s string, spans ...span) string {
	if len(spans) == 0 {
		return s
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	var b strings.Builder
	prev := 0
	for _, sp := range spans {
		if sp.start < prev {
			continue
		}
		b.WriteString(s[prev:sp.start])
		b.WriteByte(' ')
		prev = sp.end
	}
	b.WriteString(s[prev:])
	return b.String()
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
