package extraction

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"infinitism/internal/domain/models/mindmap"
)

const (
	fallbackTitle    = "Content Overview"
	maxKeywords      = 5
	minKeywordLength = 4
)

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {},
	"at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
}

// FallbackTopics derives a topic set from word frequencies alone. It is pure,
// deterministic and needs no network. Empty content yields no main topics.
func FallbackTopics(content string, palette []string) mindmap.TopicSet {
	keywords := TopKeywords(content, maxKeywords)

	set := mindmap.TopicSet{
		Title:      fallbackTitle,
		MainTopics: make([]mindmap.MainTopic, 0, len(keywords)),
	}

	for i, kw := range keywords {
		topic := mindmap.MainTopic{
			Topic: capitalize(kw),
			Subtopics: []string{
				fmt.Sprintf("Key concept: %s", kw),
				fmt.Sprintf("Related to: %s", keywords[(i+1)%len(keywords)]),
				"Important for understanding",
			},
		}
		if len(palette) > 0 {
			topic.Color = palette[i%len(palette)]
		}
		set.MainTopics = append(set.MainTopics, topic)
	}

	return set
}

// TopKeywords returns up to n lower-cased words ordered by descending
// frequency. Ties keep first-occurrence order.
func TopKeywords(content string, n int) []string {
	counts := make(map[string]int)
	var order []string

	for _, word := range strings.Fields(strings.ToLower(content)) {
		if utf8.RuneCountInString(word) < minKeywordLength {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		if counts[word] == 0 {
			order = append(order, word)
		}
		counts[word]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > n {
		order = order[:n]
	}
	return order
}

func capitalize(word string) string {
	r, size := utf8.DecodeRuneInString(word)
	if r == utf8.RuneError {
		return word
	}
	return string(unicode.ToUpper(r)) + word[size:]
}
