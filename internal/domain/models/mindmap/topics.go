package mindmap

// TopicSet is the intermediate result of topic extraction.
type TopicSet struct {
	Title      string      `json:"title"`
	MainTopics []MainTopic `json:"mainTopics"`
}

// MainTopic is one first-level topic with its subtopic strings.
type MainTopic struct {
	Topic     string   `json:"topic"`
	Subtopics []string `json:"subtopics"`
	Color     string   `json:"color,omitempty"`
}

// Extraction wraps a TopicSet with how it was produced. Extraction never
// fails; a failed model call shows up here as Source == SourceFallback.
type Extraction struct {
	Topics         TopicSet `json:"topics"`
	Source         string   `json:"source"`
	Model          string   `json:"model,omitempty"`
	FallbackReason string   `json:"fallback_reason,omitempty"`
}

// Generation converts the extraction status into the stored form.
func (e Extraction) Generation() Generation {
	return Generation{
		Source:         e.Source,
		Model:          e.Model,
		FallbackReason: e.FallbackReason,
	}
}
