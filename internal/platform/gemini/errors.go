package gemini

import "errors"

// ErrEmptyPrompt is returned when a template renders to nothing.
var ErrEmptyPrompt = errors.New("prompt cannot be empty")
