package agentdef

import "strings"

type lexState int

const (
	stateNormal lexState = iota
	stateComment
	stateBasic
	stateLiteral
	stateMultiBasic
	stateMultiLiteral
)

// mask returns a copy of text in which comments and the bodies of
// multi-line strings are replaced by spaces. Newlines, single-line strings
// and the multi-line delimiters themselves are kept, and the result has the
// same byte length as text, so line-anchored patterns over the mask still
// line up with the source.
func mask(text string) string {
	return maskText(text, false)
}

// maskStrings is mask with the bodies of single-line strings blanked too.
// Only keys, punctuation and bare values survive, at the same offsets as in
// text.
func maskStrings(text string) string {
	return maskText(text, true)
}

func maskText(text string, blankStrings bool) string {
	var b strings.Builder
	b.Grow(len(text))

	state := stateNormal
	for i := 0; i < len(text); i++ {
		c := text[i]

		switch state {
		case stateNormal:
			switch {
			case c == '#':
				state = stateComment
				b.WriteByte(' ')
			case strings.HasPrefix(text[i:], `"""`):
				b.WriteString(`"""`)
				i += 2
				state = stateMultiBasic
			case strings.HasPrefix(text[i:], `'''`):
				b.WriteString(`'''`)
				i += 2
				state = stateMultiLiteral
			case c == '"':
				b.WriteByte(c)
				state = stateBasic
			case c == '\'':
				b.WriteByte(c)
				state = stateLiteral
			default:
				b.WriteByte(c)
			}

		case stateComment:
			if c == '\n' {
				b.WriteByte(c)
				state = stateNormal
			} else {
				b.WriteByte(' ')
			}

		case stateBasic:
			switch {
			case c == '\\' && i+1 < len(text) && text[i+1] != '\n':
				b.WriteByte(keep(c, blankStrings))
				b.WriteByte(keep(text[i+1], blankStrings))
				i++
			case c == '"' || c == '\n':
				// An unterminated string ends at the line break.
				b.WriteByte(c)
				state = stateNormal
			default:
				b.WriteByte(keep(c, blankStrings))
			}

		case stateLiteral:
			if c == '\'' || c == '\n' {
				b.WriteByte(c)
				state = stateNormal
			} else {
				b.WriteByte(keep(c, blankStrings))
			}

		case stateMultiBasic:
			switch {
			case c == '\\' && i+1 < len(text):
				b.WriteByte(' ')
				b.WriteByte(blank(text[i+1]))
				i++
			case strings.HasPrefix(text[i:], `"""`):
				i += closeMultiline(&b, text, i, '"')
				state = stateNormal
			default:
				b.WriteByte(blank(c))
			}

		case stateMultiLiteral:
			if strings.HasPrefix(text[i:], `'''`) {
				i += closeMultiline(&b, text, i, '\'')
				state = stateNormal
			} else {
				b.WriteByte(blank(c))
			}
		}
	}
	return b.String()
}

// closeMultiline writes the closing delimiter of a multi-line string that
// starts at text[i]. Up to two extra quotes directly before the delimiter
// belong to the string body and are blanked. It returns how many bytes past
// i were consumed.
func closeMultiline(b *strings.Builder, text string, i int, quote byte) int {
	n := 3
	for n < 5 && i+n < len(text) && text[i+n] == quote {
		n++
	}
	for k := 3; k < n; k++ {
		b.WriteByte(' ')
	}
	b.WriteByte(quote)
	b.WriteByte(quote)
	b.WriteByte(quote)
	return n - 1
}

func keep(c byte, blankIt bool) byte {
	if blankIt {
		return blank(c)
	}
	return c
}

func blank(c byte) byte {
	if c == '\n' || c == '\r' {
		return c
	}
	return ' '
}
