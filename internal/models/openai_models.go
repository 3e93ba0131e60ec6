package models

// VisionRequest is what the analysis pipeline hands to the vision model.
type VisionRequest struct {
	SystemPrompt string
	UserPrompt   string
	ImageURI     string
}
