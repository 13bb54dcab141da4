package mindmap

import (
	"fmt"
	"strings"
	"unicode/utf8"

	models "infinitism/internal/domain/models/mindmap"
)

const (
	defaultTitle = "Study Guide Mindmap"

	mainSpacing   = 120.0
	subSpacing    = 60.0
	mainOffsetX   = 300.0
	subOffsetX    = 250.0
	maxLabelRunes = 40
	truncatedTo   = 37
)

// Builder converts a TopicSet into mind map Data. It is pure.
type Builder struct {
	palette []string
}

// NewBuilder creates a builder that colours uncoloured topics from palette.
func NewBuilder(palette []string) *Builder {
	return &Builder{palette: palette}
}

// Build lays main topics out on a vertical column centred on zero and
// fans each topic's subtopics out beside it. Coordinates are advisory.
func (b *Builder) Build(set models.TopicSet) models.Data {
	n := len(set.MainTopics)
	nodes := make([]models.Node, 0, n)

	for i, topic := range set.MainTopics {
		mainY := (float64(i) - float64(n-1)/2) * mainSpacing
		color := b.colorFor(i, topic.Color)

		m := len(topic.Subtopics)
		children := make([]models.Node, 0, m)
		for j, sub := range topic.Subtopics {
			children = append(children, models.Node{
				ID:          fmt.Sprintf("sub-%d-%d", i, j),
				Text:        truncateLabel(sub),
				Description: sub,
				Children:    []models.Node{},
				X:           mainOffsetX + subOffsetX,
				Y:           mainY + (float64(j)-float64(m-1)/2)*subSpacing,
				Color:       color,
				Level:       2,
			})
		}

		nodes = append(nodes, models.Node{
			ID:          fmt.Sprintf("main-%d", i),
			Text:        topic.Topic,
			Description: "Key concept: " + topic.Topic,
			Children:    children,
			X:           mainOffsetX,
			Y:           mainY,
			Color:       color,
			Level:       1,
		})
	}

	title := strings.TrimSpace(set.Title)
	if title == "" {
		title = defaultTitle
	}

	return models.Data{Title: title, Nodes: nodes}
}

func (b *Builder) colorFor(i int, color string) string {
	if color != "" || len(b.palette) == 0 {
		return color
	}
	return b.palette[i%len(b.palette)]
}

// truncateLabel shortens labels longer than 40 characters to 37 plus "...".
func truncateLabel(s string) string {
	if utf8.RuneCountInString(s) <= maxLabelRunes {
		return s
	}
	return string([]rune(s)[:truncatedTo]) + "..."
}
