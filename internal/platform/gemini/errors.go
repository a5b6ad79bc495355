package gemini

import (
	"errors"
	"fmt"

	"github.com/phrazzld/study-buddy/internal/domain"
)

var (
	// ErrInvalidConfig is returned when the generator configuration is invalid.
	ErrInvalidConfig = errors.New("invalid generator configuration")

	// ErrInvalidResponse is returned when the model response cannot be parsed.
	ErrInvalidResponse = fmt.Errorf("%w: invalid response from language model", domain.ErrEmptyResult)

	// ErrContentBlocked is returned when the model blocks the notes or the answer.
	ErrContentBlocked = fmt.Errorf("%w: content blocked by language model safety filters", domain.ErrEmptyResult)

	// ErrTransientFailure is returned when retryable failures outlast the retry budget.
	ErrTransientFailure = fmt.Errorf("%w: transient error during card generation", domain.ErrUnreachable)
)
