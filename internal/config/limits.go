package config

const (
	// MaxNodeTextLength is the maximum length (in characters) of an edited node label.
	// Labels are drawn on a single line.
	MaxNodeTextLength = 500
)
