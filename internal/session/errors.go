package session

import (
	"errors"
	"fmt"
)

// Session lifecycle errors. Handlers map these onto response.ErrCode values.
var (
	// ErrEmptyQuestionSet blocks starting a session with zero questions.
	ErrEmptyQuestionSet = errors.New("session: question set is empty")

	// ErrEmptyAnswer rejects a manual submission with a blank buffer.
	ErrEmptyAnswer = errors.New("session: answer is empty")

	// ErrDuplicateSubmission reports a manual submit against a slot that a
	// timeout already froze. The submission is discarded, not an error state.
	ErrDuplicateSubmission = errors.New("session: slot already submitted")

	// ErrSubmissionInFlight reports a second manual submit while the first
	// is still waiting on the backend.
	ErrSubmissionInFlight = errors.New("session: submission already in flight")
)

// Submitter implementations wrap these sentinels so the coordinator can
// distinguish auth expiry from transport failure.
var (
	ErrSubmitUnauthorized = errors.New("submit: session expired")
	ErrSubmitNetwork      = errors.New("submit: network failure")
)

// PhaseError reports an operation invoked from the wrong phase.
type PhaseError struct {
	Op    string
	Phase Phase
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("session: %s not valid in phase %s", e.Op, e.Phase)
}

// MediaAccessDeniedError reports a failed media acquisition. The session
// stays in AwaitingPermissions and the caller may retry.
type MediaAccessDeniedError struct {
	Reason string
}

func (e *MediaAccessDeniedError) Error() string {
	return "session: media access denied: " + e.Reason
}
