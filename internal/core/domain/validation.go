package domain

// ValidationError carries the first rule an input payload violated. Message is
// safe to show to the user as is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
