package recognition

// ErrorKind distinguishes the recognition failure modes surfaced to the user
type ErrorKind string

const (
	// EmptyResult means the collaborator answered but found no questions
	EmptyResult ErrorKind = "empty_result"
	// TransportFailure means the collaborator could not be reached
	TransportFailure ErrorKind = "transport_failure"
	// TimeoutFailure means the collaborator did not answer in time
	TimeoutFailure ErrorKind = "timeout_failure"
	// CollaboratorError means the collaborator explicitly reported failure
	CollaboratorError ErrorKind = "collaborator_error"
)

const (
	emptyResultMessage = "No questions found in the image. Please try a clearer photo."
	transportMessage   = "Network error. Please check your connection and try again."
	timeoutMessage     = "Request timeout. The image might be too large. Please try a smaller image."
	badJSONMessage     = "AI response was not valid JSON"
)

// Error is a typed recognition failure with a message ready for display
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// NoQuestions returns the canonical empty-result failure
func NoQuestions() *Error {
	return &Error{Kind: EmptyResult, Message: emptyResultMessage}
}
