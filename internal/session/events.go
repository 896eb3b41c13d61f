package session

import (
	"context"

	"github.com/google/uuid"

	"github.com/prepdeck/intervue-backend/internal/model"
)

// Phase enumerates the session lifecycle.
type Phase string

const (
	PhaseAwaitingPermissions Phase = "AWAITING_PERMISSIONS"
	PhaseReady               Phase = "READY"
	PhaseRunning             Phase = "RUNNING"
	PhaseEnded               Phase = "ENDED"
)

// EventType tags events the controller emits toward the client.
type EventType string

const (
	EventPhase     EventType = "phase"
	EventQuestion  EventType = "question"
	EventCountdown EventType = "countdown"
	EventSaved     EventType = "saved"
	EventSubmitted EventType = "submitted"
	EventNotice    EventType = "notice"
	EventModal     EventType = "modal"
	EventEnded     EventType = "ended"
)

// Notice codes carried by EventNotice.
const (
	NoticeDuplicateSubmission = "duplicate-submission"
	NoticeSubmitFailed        = "submit-failed"
	NoticeSessionExpired      = "session-expired"
	NoticePasteBlocked        = "paste-blocked"
	NoticeAutoSubmitted       = "auto-submitted"
)

// Event is one controller-to-client notification. Fields are populated
// per type; zero values mean not-applicable.
type Event struct {
	Type      EventType
	Phase     Phase
	Index     int
	Question  *model.Question
	Remaining int
	Cause     model.SubmissionCause
	Code      string
	Message   string
	Bundle    *model.AnalysisBundle
}

// Emitter receives controller events. Implementations must not call back
// into the controller synchronously.
type Emitter interface {
	Emit(Event)
}

// NoopEmitter drops all events.
type NoopEmitter struct{}

func (NoopEmitter) Emit(Event) {}

// Submitter is the backend submit-answer collaborator. Implementations
// wrap ErrSubmitUnauthorized or ErrSubmitNetwork so the coordinator can
// apply the right failure semantics.
type Submitter interface {
	Submit(ctx context.Context, interviewID, questionID uuid.UUID, text string, cause model.SubmissionCause, activity []model.ActivityEntry) error
}

// Handoff receives the terminal outcome of a session.
type Handoff interface {
	// Completed delivers the analysis bundle after the last submission.
	Completed(bundle *model.AnalysisBundle)
	// Abandoned reports a session the candidate left early.
	Abandoned(interviewID uuid.UUID)
}

// NoopHandoff discards terminal outcomes.
type NoopHandoff struct{}

func (NoopHandoff) Completed(*model.AnalysisBundle) {}
func (NoopHandoff) Abandoned(uuid.UUID)             {}

// DraftSink mirrors auto-saved buffers outside the session (the Redis
// draft hash). Mirror failures are invisible to the engine.
type DraftSink interface {
	SaveDraft(interviewID uuid.UUID, index int, text string)
}

// NoopDraftSink drops draft mirrors.
type NoopDraftSink struct{}

func (NoopDraftSink) SaveDraft(uuid.UUID, int, string) {}
