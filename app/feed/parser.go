package feed

import (
	"cmp"
	"strings"
)

// Parser recognizes the tag grammar of a feed post:
//
//	@Guild <name> - <context> @Title <project> @<assignee>
//	- [ ] <subtask> @<assignee>
//	- [x] <completed subtask>
//
// The first non-empty line is the header; checklist lines below it become subtasks.
// Unrecognized or malformed tags leave the matching fields unset.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Run(title, content string) ParseResult {
	lines := splitLines(title + "\n" + content)
	if len(lines) == 0 {
		return ParseResult{MainDescription: title}
	}

	header := lines[0]
	var result ParseResult
	var spans []span

	if name, sp, ok := p.findGuild(header); ok {
		result.GuildName = name
		result.GuildContext = p.guildContext(header[sp.end:])
		spans = append(spans, sp)
	}

	if name, sp, ok := p.findTitle(header); ok {
		result.TitleName = name
		spans = append(spans, sp)
	} else if name, _, ok := colonTag(content, "title"); ok {
		result.TitleName = name
	}

	if mentions := personMentions(header); len(mentions) > 0 {
		result.MainAssignee = mentions[len(mentions)-1]
	}

	result.MainDescription = cmp.Or(p.mainDescription(header, spans, result), title, header)

	for _, line := range lines[1:] {
		if subtask, ok := p.parseSubtask(line); ok {
			result.Subtasks = append(result.Subtasks, subtask)
		}
	}

	return result
}

// findGuild locates "@Guild <name>". The name holds no '@' or '-' and ends at the first
// whitespace that is followed by a standalone '-', by an '@', or by the end of the line.
func (p *Parser) findGuild(line string) (string, span, bool) {
	for from := 0; ; {
		at := indexClause(line, "guild", from)
		if at < 0 {
			return "", span{}, false
		}
		from = at + 1

		start := skipSpaces(line, at+len("@guild"))
		end, ok := p.guildNameEnd(line, start)
		if !ok {
			continue
		}
		if name := strings.TrimSpace(line[start:end]); name != "" {
			return name, span{at, end}, true
		}
	}
}

func (p *Parser) guildNameEnd(line string, i int) (int, bool) {
	for ; i < len(line); i++ {
		c := line[i]
		if c == '@' || c == '-' {
			return 0, false
		}
		if !isSpace(c) {
			continue
		}
		next := skipSpaces(line, i)
		if next == len(line) || line[next] == '@' || isDashAt(line, next) {
			return i, true
		}
	}
	return len(line), true
}

// guildContext reads the text that follows the guild name. A leading " - " is consumed;
// then either the text before the next " - " is the context, or, when there is none, the
// remainder minus any @Title clause and tags.
func (p *Parser) guildContext(rest string) string {
	rest = strings.TrimSpace(rest)
	if isDashAt(rest, 0) {
		rest = strings.TrimSpace(rest[1:])
	}
	if i := strings.Index(rest, " - "); i >= 0 {
		return strings.TrimSpace(rest[:i])
	}
	if at := indexClause(rest, "title", 0); at >= 0 {
		rest = rest[:at]
	}
	return collapseSpaces(stripMentions(stripColonTags(rest)))
}

// findTitle locates "@Title <name>". The name runs to the next '@' or the end of the line.
func (p *Parser) findTitle(line string) (string, span, bool) {
	for from := 0; ; {
		at := indexClause(line, "title", from)
		if at < 0 {
			return "", span{}, false
		}
		from = at + 1

		start := skipSpaces(line, at+len("@title"))
		end := start
		for end < len(line) && line[end] != '@' {
			end++
		}
		if name := strings.TrimSpace(line[start:end]); name != "" {
			return name, span{at, end}, true
		}
	}
}

func (p *Parser) mainDescription(header string, spans []span, result ParseResult) string {
	description := cut(header, spans...)
	description = stripMentions(stripColonTags(description))
	description = strings.TrimSpace(description)
	description = strings.TrimSpace(strings.TrimPrefix(description, "*"))
	description = strings.TrimSpace(strings.TrimSuffix(description, "-"))
	description = collapseSpaces(description)

	if result.GuildContext != "" {
		description = result.GuildContext
	}
	if result.TitleName != "" {
		if description == "" {
			return result.TitleName
		}
		return description + " - " + result.TitleName
	}
	return description
}

// parseSubtask matches "-" [ws] "[" (" " | "x" | "X" | "") "]" [ws] text. A trailing
// "@word" on the text names the assignee.
func (p *Parser) parseSubtask(line string) (Subtask, bool) {
	if !strings.HasPrefix(line, "-") {
		return Subtask{}, false
	}
	i := skipSpaces(line, 1)
	if i >= len(line) || line[i] != '[' {
		return Subtask{}, false
	}
	i++

	var subtask Subtask
	if i < len(line) && (line[i] == 'x' || line[i] == 'X') {
		subtask.Completed = true
		i++
	} else if i < len(line) && isSpace(line[i]) {
		i++
	}
	if i >= len(line) || line[i] != ']' {
		return Subtask{}, false
	}

	text := strings.TrimSpace(line[i+1:])
	wordStart := len(text)
	for wordStart > 0 && isWordByte(text[wordStart-1]) {
		wordStart--
	}
	if wordStart > 0 && wordStart < len(text) && text[wordStart-1] == '@' {
		subtask.AssigneeName = text[wordStart:]
		text = text[:wordStart-1]
	}
	subtask.Description = strings.TrimSpace(text)

	return subtask, true
}
