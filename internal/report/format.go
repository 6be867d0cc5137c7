package report

import (
	"strings"

	"familybudget/internal/core"

	"github.com/dustin/go-humanize"
)

// FormatAmount renders m as "RWF 1,234".
func FormatAmount(m core.Money) string {
	return "RWF " + humanize.Commaf(m.Float64())
}

// formatEntered leaves amounts that were never entered blank.
func formatEntered(m core.Money) string {
	if m.IsZero() {
		return ""
	}
	return FormatAmount(m)
}

// wrap breaks text into lines of at most width runes on word boundaries.
// Paragraph breaks in the input are kept.
func wrap(text string, width int) []string {
	var out []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := ""
		for _, w := range words {
			for len([]rune(w)) > width {
				if line != "" {
					out = append(out, line)
					line = ""
				}
				r := []rune(w)
				out = append(out, string(r[:width]))
				w = string(r[width:])
			}
			switch {
			case line == "":
				line = w
			case len([]rune(line))+1+len([]rune(w)) <= width:
				line += " " + w
			default:
				out = append(out, line)
				line = w
			}
		}
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// truncate shortens s to width runes.
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "~"
}
