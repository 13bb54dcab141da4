package mindmap

// ProcessingStatus is the progress of one generation as shown to a user.
type ProcessingStatus string

const (
	StatusIdle       ProcessingStatus = "idle"
	StatusProcessing ProcessingStatus = "processing"
	StatusSuccess    ProcessingStatus = "success"
	StatusError      ProcessingStatus = "error"
)
