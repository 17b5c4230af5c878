package segmenter

import "strings"

// Summarization and embedding token budgets. A section boundary may close a
// unit once it holds sectionTokens; a unit never grows past highTokens
// except by the single section that overflows it.
const (
	SummarizeSectionTokens = 2400
	SummarizeHighTokens    = 3000

	EmbeddingSectionTokens = 600
	EmbeddingHighTokens    = 800
	EmbeddingMaxArray      = 16
	EmbeddingMaxTokens     = 7000
)

// Segment splits content into translation units. Token counts measure the
// JSON form of each section's texts, which is what the chat model receives.
func Segment(content []Section, tokens TokensFn, sectionTokens, highTokens int) []Unit {
	var list []Unit
	unit := Unit{}

	for i := range content {
		c := &content[i]
		if len(c.Texts) == 0 {
			if c.ID == Separator && unit.Tokens >= sectionTokens {
				list = append(list, unit)
				unit = Unit{}
			}
			continue
		}

		ctl := tokens(c.TranslatingString())
		if unit.Tokens+ctl > highTokens {
			if len(unit.Content) > 0 {
				list = append(list, unit)
			}
			unit = Unit{Tokens: ctl, Content: []Section{*c}}
		} else {
			unit.Tokens += ctl
			unit.Content = append(unit.Content, *c)
		}
	}

	if unit.Tokens > 0 {
		list = append(list, unit)
	}
	return list
}

// SegmentText splits content into newline-joined plain text pieces for
// summarization.
func SegmentText(content []Section, tokens TokensFn) []string {
	var list []string
	var unit []string
	count := 0

	for i := range content {
		c := &content[i]
		if len(c.Texts) == 0 {
			if c.ID == Separator && count >= SummarizeSectionTokens {
				list = append(list, strings.Join(unit, "\n"))
				count = 0
				unit = unit[:0]
			}
			continue
		}

		s := c.Compact(" ")
		ctl := tokens(s)
		if count+ctl > SummarizeHighTokens {
			if len(unit) > 0 {
				list = append(list, strings.Join(unit, "\n"))
			}
			count = ctl
			unit = append(unit[:0], s)
		} else {
			count += ctl
			unit = append(unit, s)
		}
	}

	if count > 0 {
		list = append(list, strings.Join(unit, "\n"))
	}
	return list
}

// SegmentForEmbedding splits content into groups of units. Each group fits
// one embedding request: at most EmbeddingMaxArray units and roughly
// EmbeddingMaxTokens tokens. Unlike translation, the section that overflows
// a unit is kept in it before the unit closes.
func SegmentForEmbedding(content []Section, tokens TokensFn) [][]Unit {
	var list [][]Unit
	var group []Unit
	groupTokens := 0
	unit := Unit{}

	for i := range content {
		c := &content[i]
		if len(c.Texts) == 0 {
			if c.ID == Separator {
				if unit.Tokens >= EmbeddingSectionTokens {
					groupTokens += unit.Tokens
					group = append(group, unit)
					unit = Unit{}
				}
				if groupTokens >= EmbeddingMaxTokens || len(group) >= EmbeddingMaxArray {
					list = append(list, group)
					groupTokens = 0
					group = nil
				}
			}
			continue
		}

		ctl := tokens(c.Compact(" "))
		if unit.Tokens+ctl >= EmbeddingHighTokens {
			unit.Tokens += ctl
			unit.Content = append(unit.Content, *c)
			groupTokens += unit.Tokens
			group = append(group, unit)
			unit = Unit{}

			if groupTokens >= EmbeddingMaxTokens || len(group) >= EmbeddingMaxArray {
				list = append(list, group)
				groupTokens = 0
				group = nil
			}
		} else {
			unit.Tokens += ctl
			unit.Content = append(unit.Content, *c)
		}
	}

	if unit.Tokens > 0 {
		groupTokens += unit.Tokens
		group = append(group, unit)
	}
	if groupTokens > 0 {
		list = append(list, group)
	}
	return list
}
