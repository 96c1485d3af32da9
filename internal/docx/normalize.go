/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package docx

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

var (
	actionPattern    = regexp.MustCompile(`(?s)\{\{.*?\}\}`)
	directivePattern = regexp.MustCompile(`(?s)\{\{(-?)\s*(tr|tc|p)\s+(.*?)\s*(-?)\}\}`)

	quoteReplacer = strings.NewReplacer("“", `"`, "”", `"`, "„", `"`, "‘", "'", "’", "'")
)

// Normalize turns Word XML into a parseable text/template source.
func Normalize(src string) (string, error) {
	src = joinSplitActions(src)
	src = actionPattern.ReplaceAllStringFunc(src, func(action string) string {
		return quoteReplacer.Replace(html.UnescapeString(action))
	})
	return expandDirectives(src)
}

// joinSplitActions drops markup that Word inserted inside {{ ... }}.
func joinSplitActions(src string) string {
	type tag struct {
		start, end int
		textPos    int
	}

	var (
		text strings.Builder
		tags []tag
	)
	for i := 0; i < len(src); {
		if src[i] != '<' {
			text.WriteByte(src[i])
			i++
			continue
		}
		end := strings.IndexByte(src[i:], '>')
		if end < 0 {
			text.WriteString(src[i:])
			break
		}
		tags = append(tags, tag{start: i, end: i + end + 1, textPos: text.Len()})
		i += end + 1
	}

	spans := actionSpans(text.String())
	if len(spans) == 0 {
		return src
	}

	var out strings.Builder
	out.Grow(len(src))
	last, span := 0, 0
	for _, tg := range tags {
		for span < len(spans) && spans[span][1] <= tg.textPos {
			span++
		}
		if span < len(spans) && spans[span][0] < tg.textPos && tg.textPos < spans[span][1] {
			out.WriteString(src[last:tg.start])
			last = tg.end
		}
	}
	out.WriteString(src[last:])
	return out.String()
}

func actionSpans(text string) [][2]int {
	var spans [][2]int
	for from := 0; ; {
		open := strings.Index(text[from:], "{{")
		if open < 0 {
			return spans
		}
		open += from
		closing := strings.Index(text[open+2:], "}}")
		if closing < 0 {
			return spans
		}
		end := open + 2 + closing + 2
		spans = append(spans, [2]int{open, end})
		from = end
	}
}

// expandDirectives replaces the element enclosing a tr, tc or p action with
// the bare action.
func expandDirectives(src string) (string, error) {
	for {
		loc := directivePattern.FindStringSubmatchIndex(src)
		if loc == nil {
			return src, nil
		}
		element := "w:" + src[loc[4]:loc[5]]

		start := lastOpenTag(src[:loc[0]], element)
		if start < 0 {
			return "", fmt.Errorf("%q is not inside a <%s> element", src[loc[0]:loc[1]], element)
		}
		closeTag := "</" + element + ">"
		end := strings.Index(src[loc[1]:], closeTag)
		if end < 0 {
			return "", fmt.Errorf("%q has no closing </%s>", src[loc[0]:loc[1]], element)
		}
		end += loc[1] + len(closeTag)

		action := "{{"
		if loc[3] > loc[2] {
			action += "- "
		}
		action += src[loc[6]:loc[7]]
		if loc[9] > loc[8] {
			action += " -"
		}
		action += "}}"

		src = src[:start] + action + src[end:]
	}
}

func lastOpenTag(src, element string) int {
	bare := strings.LastIndex(src, "<"+element+">")
	withAttrs := strings.LastIndex(src, "<"+element+" ")
	if withAttrs > bare {
		return withAttrs
	}
	return bare
}
