package extraction

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"infinitism/internal/domain/models/mindmap"
)

var (
	errNoJSON        = errors.New("reply contains no JSON object")
	errMissingTopics = errors.New("reply has no mainTopics")
	hexColor         = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
)

type rawTopicSet struct {
	Title      string      `json:"title"`
	MainTopics *[]rawTopic `json:"mainTopics"`
}

type rawTopic struct {
	Topic     *string   `json:"topic"`
	Subtopics *[]string `json:"subtopics"`
	Color     string    `json:"color"`
}

// parseTopics decodes the span from the first "{" to the last "}" of a model reply.
func parseTopics(reply string) (mindmap.TopicSet, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end < start {
		return mindmap.TopicSet{}, errNoJSON
	}

	var raw rawTopicSet
	if err := json.Unmarshal([]byte(reply[start:end+1]), &raw); err != nil {
		return mindmap.TopicSet{}, fmt.Errorf("decode reply: %w", err)
	}
	if raw.MainTopics == nil {
		return mindmap.TopicSet{}, errMissingTopics
	}

	set := mindmap.TopicSet{
		Title:      strings.TrimSpace(raw.Title),
		MainTopics: make([]mindmap.MainTopic, 0, len(*raw.MainTopics)),
	}
	for i, t := range *raw.MainTopics {
		if t.Topic == nil {
			return mindmap.TopicSet{}, fmt.Errorf("main topic %d has no topic", i)
		}
		if t.Subtopics == nil {
			return mindmap.TopicSet{}, fmt.Errorf("main topic %d has no subtopics", i)
		}

		topic := mindmap.MainTopic{
			Topic:     *t.Topic,
			Subtopics: *t.Subtopics,
		}
		// an unusable colour falls through to the builder palette
		if hexColor.MatchString(t.Color) {
			topic.Color = t.Color
		}
		set.MainTopics = append(set.MainTopics, topic)
	}

	return set, nil
}
