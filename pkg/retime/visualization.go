package retime

import "strings"

// ANSI color codes
const (
	ansiRed   = "\033[31m"
	ansiGreen = "\033[32m"
	ansiDim   = "\033[2m"
	ansiReset = "\033[0m"
)

// VisualizeTokens renders an aligned token stream for a terminal: deleted
// text in red, inserted text in green, kept text plain, newline boundaries
// shown dimmed as pilcrows so segment breaks stay visible.
func VisualizeTokens(tokens []Token) string {
	var b strings.Builder
	for _, tok := range tokens {
		switch {
		case tok.State == Delete && tok.IsBoundary():
			// A removed segment break: keep it visible but do not break the line.
			b.WriteString(ansiRed)
			b.WriteString("¶")
			b.WriteString(ansiReset)
		case tok.IsBoundary():
			b.WriteString(ansiDim)
			b.WriteString("¶")
			b.WriteString(ansiReset)
			b.WriteString("\n")
		case tok.State == Delete:
			b.WriteString(ansiRed)
			b.WriteString(tok.Text)
			b.WriteString(ansiReset)
		case tok.State == Insert:
			b.WriteString(ansiGreen)
			b.WriteString(tok.Text)
			b.WriteString(ansiReset)
		default:
			b.WriteString(tok.Text)
		}
	}
	return b.String()
}
