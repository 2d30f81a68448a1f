package util

// IndexError wraps an underlying cause with a human-readable message,
// the common shape for every error the index package raises.
type IndexError struct {
	Message string
	Err     error
}

func (e *IndexError) Error() string {
	return e.Message
}

func (e *IndexError) Unwrap() error {
	return e.Err
}

type BufferpoolExhaustedError struct {
	*IndexError
}
