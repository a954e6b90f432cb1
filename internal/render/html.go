// Package render turns Hacker News item fields into terminal text.
package render

import (
	"strings"

	"github.com/mattn/go-runewidth"
	xhtml "golang.org/x/net/html"
)

const codeIndent = "    "

// Text converts the small HTML subset HN emits (<p>, <a>, <i>, <code>,
// <pre><code> and entities) into plain text wrapped to width columns.
// A width of zero or less disables wrapping.
func Text(raw string, width int) string {
	if raw == "" {
		return ""
	}

	z := xhtml.NewTokenizer(strings.NewReader(raw))
	var (
		sb         strings.Builder
		inPre      bool
		href       string
		anchorText strings.Builder
	)

	for {
		switch z.Next() {
		case xhtml.ErrorToken:
			return wrap(trim(sb.String()), width)

		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			t := z.Token()
			switch t.Data {
			case "p":
				if sb.Len() > 0 {
					sb.WriteString("\n\n")
				}
			case "br":
				sb.WriteString("\n")
			case "i", "em":
				sb.WriteString("*")
			case "code":
				if !inPre {
					sb.WriteString("`")
				}
			case "pre":
				inPre = true
				sb.WriteString("\n")
			case "a":
				href = attr(t, "href")
				anchorText.Reset()
			}

		case xhtml.EndTagToken:
			switch t := z.Token(); t.Data {
			case "i", "em":
				sb.WriteString("*")
			case "code":
				if !inPre {
					sb.WriteString("`")
				}
			case "pre":
				inPre = false
				sb.WriteString("\n")
			case "a":
				// HN truncates long link text with "..."; show the full target.
				if href != "" && strings.TrimSpace(anchorText.String()) != href {
					sb.WriteString(" [" + href + "]")
				}
				href = ""
			}

		case xhtml.TextToken:
			text := z.Token().Data
			if href != "" {
				anchorText.WriteString(text)
			}
			if !inPre {
				sb.WriteString(text)
				continue
			}
			for i, line := range strings.Split(text, "\n") {
				if i > 0 {
					sb.WriteString("\n")
				}
				if line != "" {
					sb.WriteString(codeIndent + line)
				}
			}
		}
	}
}

// trim drops surrounding blank lines and trailing space but keeps the
// indentation of a leading code block.
func trim(s string) string {
	return strings.TrimRight(strings.TrimLeft(s, "\n"), " \t\n")
}

func attr(t xhtml.Token, key string) string {
	for _, a := range t.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// wrap word-wraps text to width display columns. Code lines are left alone.
func wrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	var out strings.Builder
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, codeIndent) {
			out.WriteString(line + "\n")
			continue
		}
		col := 0
		for i, word := range strings.Fields(line) {
			w := runewidth.StringWidth(word)
			switch {
			case i == 0:
			case col+1+w > width:
				out.WriteString("\n")
				col = 0
			default:
				out.WriteString(" ")
				col++
			}
			out.WriteString(word)
			col += w
		}
		out.WriteString("\n")
	}
	return strings.TrimRight(out.String(), "\n")
}

// Indent prefixes every line of text with prefix.
func Indent(text, prefix string) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
