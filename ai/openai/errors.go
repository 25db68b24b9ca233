package openai

import "errors"

// ErrNoCompletion is returned when the model responds without any choices.
var ErrNoCompletion = errors.New("model returned no completion")
