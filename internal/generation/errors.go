package generation

import "errors"

var (
	// ErrGenerationFailed is returned when the provider fails for any general reason.
	ErrGenerationFailed = errors.New("content generation failed")

	// ErrInvalidResponse is returned when the model output cannot be parsed.
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when safety filters block the output.
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure marks errors that may succeed on retry.
	ErrTransientFailure = errors.New("transient error during content generation")

	// ErrInvalidConfig is returned when a provider is misconfigured.
	ErrInvalidConfig = errors.New("invalid generator configuration")

	// ErrProviderUnavailable is returned by the provider used when no model
	// is configured.
	ErrProviderUnavailable = errors.New("generation provider not configured")

	// ErrEvaluationUnavailable is returned when an answer cannot be graded.
	ErrEvaluationUnavailable = errors.New("answer evaluation unavailable")
)
