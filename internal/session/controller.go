package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prepdeck/intervue-backend/internal/model"
)

// Answer sentinels, kept byte-compatible with what the analysis stage
// already expects.
const (
	TimeoutFallbackText = "Time expired - No response provided"
	NoResponseText      = "No response provided"
)

// AnswerSlot is the per-question answer record. Mutable while its question
// is active; frozen forever at submission time.
type AnswerSlot struct {
	Question  model.Question
	Draft     string // live textarea buffer
	Saved     string // last auto-saved buffer
	Submitted bool
	Cause     model.SubmissionCause
	FinalText string

	inFlight bool // a manual submission is waiting on the backend
}

// Config wires a Controller's collaborators. Zero-value optional fields
// get no-op defaults.
type Config struct {
	InterviewID uuid.UUID
	Domain      model.Domain

	Submitter Submitter
	Handoff   Handoff
	Emitter   Emitter
	Activator Activator
	Detector  MotionDetector
	Drafts    DraftSink

	AutosaveInterval time.Duration
	AutosaveDebounce time.Duration
	SamplerInterval  time.Duration

	Clock  func() time.Time
	Logger zerolog.Logger

	// ManualTick disables the internal heartbeat goroutine; the caller
	// drives session time through tick. Used by deterministic drivers.
	ManualTick bool
}

// Controller is one candidate's interview session: the state machine, the
// countdown timer, auto-save, media lifecycle, navigation guard, sampler
// and submission coordinator, all serialized on one mutex. Timer ticks,
// client events and network completions therefore interleave on a single
// cooperative timeline; the only races possible are ordering races, and
// those are settled by whoever takes the lock first.
type Controller struct {
	mu sync.Mutex

	id     uuid.UUID
	domain model.Domain
	phase  Phase

	slots   []AnswerSlot
	current int

	timer    *CountdownTimer
	autosave *AutosaveEngine
	media    *MediaLifecycle
	guard    *NavigationGuard
	sampler  *BackgroundSampler
	activity *ActivityLog

	submitter Submitter
	handoff   Handoff
	emitter   Emitter
	drafts    DraftSink

	clock      func() time.Time
	manualTick bool
	log        zerolog.Logger

	// timeoutDeferred is set when the countdown expires while a manual
	// submission for the same slot is in flight. The timeout path runs
	// only if that manual attempt fails.
	timeoutDeferred bool

	heartbeatStop chan struct{}
	heartbeatDone chan struct{}
}

// New creates a session controller in AwaitingPermissions.
func New(cfg Config) *Controller {
	if cfg.Submitter == nil {
		panic("session: Submitter is required")
	}
	if cfg.Handoff == nil {
		cfg.Handoff = NoopHandoff{}
	}
	if cfg.Emitter == nil {
		cfg.Emitter = NoopEmitter{}
	}
	if cfg.Drafts == nil {
		cfg.Drafts = NoopDraftSink{}
	}
	if cfg.Detector == nil {
		cfg.Detector = NewStubDetector(time.Now().UnixNano())
	}
	if cfg.AutosaveInterval <= 0 {
		cfg.AutosaveInterval = 5 * time.Second
	}
	if cfg.AutosaveDebounce <= 0 {
		cfg.AutosaveDebounce = time.Second
	}
	if cfg.SamplerInterval <= 0 {
		cfg.SamplerInterval = 5 * time.Second
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	c := &Controller{
		id:         cfg.InterviewID,
		domain:     cfg.Domain,
		phase:      PhaseAwaitingPermissions,
		media:      NewMediaLifecycle(),
		guard:      NewNavigationGuard(cfg.Activator),
		activity:   NewActivityLog(cfg.InterviewID),
		submitter:  cfg.Submitter,
		handoff:    cfg.Handoff,
		emitter:    cfg.Emitter,
		drafts:     cfg.Drafts,
		clock:      cfg.Clock,
		manualTick: cfg.ManualTick,
		log:        cfg.Logger.With().Str("component", "session").Str("interview_id", cfg.InterviewID.String()).Logger(),
	}
	c.timer = NewCountdownTimer(c.handleTimeout)
	c.autosave = NewAutosaveEngine(cfg.AutosaveInterval, cfg.AutosaveDebounce, c.persistDraft)
	c.sampler = NewBackgroundSampler(cfg.SamplerInterval, cfg.Detector, c.activity)
	return c
}

// ID returns the interview ID this controller serves.
func (c *Controller) ID() uuid.UUID { return c.id }

// LoadQuestions installs the ordered question set, one empty answer slot
// per question. Valid before the session starts. An empty list is
// accepted here; Start is where it blocks with ErrEmptyQuestionSet.
func (c *Controller) LoadQuestions(questions []model.Question) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseAwaitingPermissions && c.phase != PhaseReady {
		return &PhaseError{Op: "load questions", Phase: c.phase}
	}
	c.slots = make([]AnswerSlot, len(questions))
	for i, q := range questions {
		c.slots[i] = AnswerSlot{Question: q, Cause: model.CauseNone}
	}
	return nil
}

// RestoreDrafts seeds previously mirrored draft buffers into their slots,
// used when a controller is rebuilt for an interview that already has
// auto-saved answers. Valid before the session starts.
func (c *Controller) RestoreDrafts(drafts map[int]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseAwaitingPermissions && c.phase != PhaseReady {
		return
	}
	for i, text := range drafts {
		if i < 0 || i >= len(c.slots) {
			continue
		}
		c.slots[i].Draft = text
		c.slots[i].Saved = text
	}
}

// AcquireMedia requests camera+microphone through the gateway. Success
// moves AwaitingPermissions to Ready; failure leaves the phase untouched
// so acquisition can be retried without recreating the session.
func (c *Controller) AcquireMedia(ctx context.Context, gw DeviceGateway) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseAwaitingPermissions && c.phase != PhaseReady {
		return &PhaseError{Op: "acquire media", Phase: c.phase}
	}
	if _, err := c.media.Acquire(ctx, gw); err != nil {
		c.log.Warn().Err(err).Msg("Media acquisition failed")
		return err
	}
	if c.phase == PhaseAwaitingPermissions {
		c.setPhaseLocked(PhaseReady)
	}
	return nil
}

// Start begins the interview: binds timer and auto-save to question 0,
// attaches the navigation guard, starts the sampler and the heartbeat.
// Valid only from Ready — the countdown never runs on an unconfirmed
// media state.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseReady {
		return &PhaseError{Op: "start", Phase: c.phase}
	}
	if len(c.slots) == 0 {
		return ErrEmptyQuestionSet
	}

	now := c.clock()
	c.current = 0
	c.setPhaseLocked(PhaseRunning)
	c.activity.Append(model.ActivitySessionStart, "Interview started", now)
	c.sampler.Start(c.media.Handle(), now)
	c.bindLocked(0)
	c.startHeartbeatLocked()

	c.log.Info().Int("questions", len(c.slots)).Msg("Session started")
	return nil
}

// Touch records a keystroke update to the active question's buffer.
// Ignored outside Running and after the slot froze.
func (c *Controller) Touch(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseRunning {
		return
	}
	slot := &c.slots[c.current]
	if slot.Submitted {
		return
	}
	slot.Draft = text
	c.autosave.Touch(text, c.clock())
}

// SubmitManual submits the active question's buffer on user request.
// Exactly one submission wins per slot: if a timeout already froze it,
// the manual attempt is discarded with a visible notice. A backend
// failure leaves the slot unsubmitted so the same answer can be retried.
func (c *Controller) SubmitManual(ctx context.Context) error {
	c.mu.Lock()

	if c.phase != PhaseRunning {
		c.mu.Unlock()
		return &PhaseError{Op: "submit", Phase: c.phase}
	}

	index := c.current
	slot := &c.slots[index]

	// The authoritative dedupe guard. Checked under the lock, so the
	// countdown firing and the user clicking submit cannot both pass.
	if slot.Submitted {
		c.emitter.Emit(Event{Type: EventNotice, Code: NoticeDuplicateSubmission, Message: "Response already submitted at timeout", Index: index})
		c.mu.Unlock()
		return ErrDuplicateSubmission
	}
	if slot.inFlight {
		c.mu.Unlock()
		return ErrSubmissionInFlight
	}

	text := strings.TrimSpace(slot.Draft)
	if text == "" {
		c.mu.Unlock()
		return ErrEmptyAnswer
	}

	// Claim the slot, then release the lock for the network call so the
	// heartbeat keeps the countdown and sampler live underneath.
	slot.inFlight = true
	questionID := slot.Question.ID
	snapshot := c.activity.Snapshot()
	c.mu.Unlock()

	err := c.submitter.Submit(ctx, c.id, questionID, text, model.CauseManual, snapshot)

	c.mu.Lock()
	defer c.mu.Unlock()

	slot = &c.slots[index]
	slot.inFlight = false

	if c.phase == PhaseEnded {
		// Session ended while the call was in flight; result is ignored.
		return nil
	}

	if err != nil {
		deferred := c.timeoutDeferred
		c.timeoutDeferred = false

		if errors.Is(err, ErrSubmitUnauthorized) {
			c.emitter.Emit(Event{Type: EventNotice, Code: NoticeSessionExpired, Message: "Session expired. Please login again.", Index: index})
		} else {
			c.emitter.Emit(Event{Type: EventNotice, Code: NoticeSubmitFailed, Message: "Failed to submit response", Index: index})
		}
		c.log.Warn().Err(err).Int("question", index).Msg("Manual submission failed")

		// The countdown expired during the failed attempt: the timeout
		// path now wins, preserving forward progress.
		if deferred {
			c.submitOnTimeoutLocked(index)
		}
		return err
	}

	c.timeoutDeferred = false
	c.freezeLocked(index, text, model.CauseManual)
	c.advanceLocked()
	return nil
}

// End finishes the interview on user request: the current in-flight
// answer (if non-empty) is force-submitted with cause manual, then the
// session transitions to Ended and hands off to analysis.
func (c *Controller) End(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseRunning {
		return &PhaseError{Op: "end", Phase: c.phase}
	}

	slot := &c.slots[c.current]
	if !slot.Submitted {
		text := strings.TrimSpace(slot.Draft)
		if text == "" {
			text = slot.Saved
		}
		if text != "" {
			c.freezeLocked(c.current, text, model.CauseManual)
			c.sendBestEffort(slot.Question.ID, text, model.CauseManual)
		}
	}

	c.endLocked(true)
	return nil
}

// BackIntent records an in-app back attempt. While Running it raises the
// leave-confirmation modal; timer and sampler keep running underneath.
func (c *Controller) BackIntent() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase == PhaseRunning && c.guard.BackIntent() {
		c.emitter.Emit(Event{Type: EventModal, Message: "Your progress will be lost. Are you sure you want to exit?"})
	}
}

// Stay dismisses the leave-confirmation modal; the countdown continues
// from where it was.
func (c *Controller) Stay() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.guard.Stay()
}

// ConfirmLeave abandons the session: timer, sampler and media are torn
// down synchronously, unsaved progress beyond the last auto-save is
// discarded, and no analysis handoff happens.
func (c *Controller) ConfirmLeave() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseRunning {
		return &PhaseError{Op: "leave", Phase: c.phase}
	}
	c.endLocked(false)
	return nil
}

// RecordBlur logs that the window lost focus.
func (c *Controller) RecordBlur() {
	c.recordActivity(model.ActivityTabBlur, "User switched tabs")
}

// RecordHidden logs that the tab became hidden.
func (c *Controller) RecordHidden() {
	c.recordActivity(model.ActivityTabHidden, "User left the window")
}

// RecordPasteBlocked logs a blocked paste attempt and warns the candidate.
func (c *Controller) RecordPasteBlocked() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseRunning {
		return
	}
	c.activity.Append(model.ActivityPasteBlocked, "Paste attempt blocked", c.clock())
	c.emitter.Emit(Event{Type: EventNotice, Code: NoticePasteBlocked, Message: "Pasting is not allowed. Please type your answer."})
}

func (c *Controller) recordActivity(kind model.ActivityKind, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseRunning {
		return
	}
	c.activity.Append(kind, message, c.clock())
}

// ─── Internal machinery (lock held) ─────────────────────────────────────

func (c *Controller) setPhaseLocked(p Phase) {
	c.phase = p
	c.guard.SetPhase(p)
	c.emitter.Emit(Event{Type: EventPhase, Phase: p})
}

// bindLocked points timer and auto-save at a question. Only ever called
// after the previous slot was locally committed, so a late timeout can
// never target the wrong question.
func (c *Controller) bindLocked(index int) {
	q := c.slots[index].Question
	c.timer.Bind(index, q.EffectiveTimeLimit())
	c.autosave.Bind(index, c.clock())
	c.emitter.Emit(Event{Type: EventQuestion, Index: index, Question: &q, Remaining: c.timer.Remaining()})
}

// freezeLocked commits a submission into the slot. After this the slot is
// immutable and auto-save for it is dead.
func (c *Controller) freezeLocked(index int, text string, cause model.SubmissionCause) {
	slot := &c.slots[index]
	slot.Submitted = true
	slot.Cause = cause
	slot.FinalText = text
	c.autosave.Stop()
	c.emitter.Emit(Event{Type: EventSubmitted, Index: index, Cause: cause})
}

func (c *Controller) advanceLocked() {
	if c.current >= len(c.slots)-1 {
		c.endLocked(true)
		return
	}
	c.current++
	c.bindLocked(c.current)
}

// handleTimeout is the countdown callback; the heartbeat invokes it with
// the lock held.
func (c *Controller) handleTimeout(index int) {
	if c.phase != PhaseRunning || index != c.current {
		return
	}
	slot := &c.slots[index]
	if slot.Submitted {
		return
	}
	if slot.inFlight {
		// A manual submission reached the coordinator first; it wins
		// unless its backend call fails.
		c.timeoutDeferred = true
		return
	}
	c.submitOnTimeoutLocked(index)
}

// submitOnTimeoutLocked is the forced-submission path. It always marks
// the slot submitted locally — the interview never stalls on a transient
// network blip — and fires the backend call best-effort: failures are
// logged, never retried, never surfaced as blocking.
func (c *Controller) submitOnTimeoutLocked(index int) {
	slot := &c.slots[index]
	now := c.clock()

	c.activity.Append(model.ActivityTimeout, fmt.Sprintf("Time expired for question %d", index+1), now)

	text := strings.TrimSpace(slot.Draft)
	if text == "" {
		text = slot.Saved
	}
	if text == "" {
		text = TimeoutFallbackText
	}

	c.freezeLocked(index, text, model.CauseTimeout)
	c.emitter.Emit(Event{Type: EventNotice, Code: NoticeAutoSubmitted, Message: "Time's up! Your response has been auto-submitted.", Index: index})
	c.sendBestEffort(slot.Question.ID, text, model.CauseTimeout)
	c.advanceLocked()
}

// sendBestEffort fires a submission in the background. Call with the lock
// held; the snapshot is taken synchronously so the goroutine touches no
// shared state.
func (c *Controller) sendBestEffort(questionID uuid.UUID, text string, cause model.SubmissionCause) {
	snapshot := c.activity.Snapshot()
	go func() {
		if err := c.submitter.Submit(context.Background(), c.id, questionID, text, cause, snapshot); err != nil {
			c.log.Warn().Err(err).Str("question_id", questionID.String()).Msg("Best-effort submission failed")
		}
	}()
}

// endLocked tears the session down: timer, auto-save, sampler and media
// are stopped synchronously before anything else observes Ended.
func (c *Controller) endLocked(completed bool) {
	c.timer.Stop()
	c.autosave.Stop()
	c.sampler.Stop()
	c.setPhaseLocked(PhaseEnded)
	c.media.Release()
	c.stopHeartbeatLocked()

	if completed {
		bundle := c.buildBundleLocked()
		c.handoff.Completed(bundle)
		c.emitter.Emit(Event{Type: EventEnded, Bundle: bundle})
		c.log.Info().Msg("Session completed")
		return
	}
	c.handoff.Abandoned(c.id)
	c.emitter.Emit(Event{Type: EventEnded})
	c.log.Info().Msg("Session abandoned")
}

// buildBundleLocked assembles the terminal analysis bundle from the
// frozen slots and the activity log.
func (c *Controller) buildBundleLocked() *model.AnalysisBundle {
	questions := make([]model.Question, len(c.slots))
	responses := make([]model.ResponseSummary, len(c.slots))
	for i := range c.slots {
		slot := &c.slots[i]
		questions[i] = slot.Question

		text := slot.FinalText
		if !slot.Submitted {
			text = slot.Saved
		}
		if strings.TrimSpace(text) == "" {
			text = NoResponseText
		}
		responses[i] = model.ResponseSummary{
			QuestionID:   slot.Question.ID,
			QuestionText: slot.Question.QuestionText,
			UserResponse: text,
		}
	}
	return &model.AnalysisBundle{
		InterviewID: c.id,
		DomainName:  c.domain.Name,
		AdminName:   c.domain.AdminName,
		Questions:   questions,
		Responses:   responses,
		ActivityLog: c.activity.Snapshot(),
	}
}

// persistDraft is the auto-save callback; the heartbeat invokes it with
// the lock held.
func (c *Controller) persistDraft(index int, text string) {
	c.slots[index].Saved = text
	c.drafts.SaveDraft(c.id, index, text)
	c.emitter.Emit(Event{Type: EventSaved, Index: index, Message: "Response auto-saved"})
}

// ─── Heartbeat ──────────────────────────────────────────────────────────

// tick advances one second of session time. The heartbeat goroutine calls
// this with the lock held; tests call it directly.
func (c *Controller) tick(now time.Time) {
	if c.phase != PhaseRunning {
		return
	}
	c.timer.Tick()
	if c.phase != PhaseRunning {
		// The timeout on the last question ended the session.
		return
	}
	c.autosave.Tick(now)
	c.sampler.Tick(now)
	c.emitter.Emit(Event{Type: EventCountdown, Index: c.current, Remaining: c.timer.Remaining()})
}

func (c *Controller) startHeartbeatLocked() {
	if c.manualTick {
		return
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	c.heartbeatStop = stop
	c.heartbeatDone = done

	go func() {
		defer close(done)
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				c.mu.Lock()
				c.tick(c.clock())
				ended := c.phase == PhaseEnded
				c.mu.Unlock()
				if ended {
					return
				}
			}
		}
	}()
}

func (c *Controller) stopHeartbeatLocked() {
	if c.heartbeatStop != nil {
		close(c.heartbeatStop)
		c.heartbeatStop = nil
	}
}

// ─── State queries ──────────────────────────────────────────────────────

// SlotView is a read-only projection of one answer slot.
type SlotView struct {
	Index        int                   `json:"index"`
	QuestionID   uuid.UUID             `json:"question_id"`
	QuestionText string                `json:"question_text"`
	TimeLimitSec int                   `json:"time_limit_sec"`
	Submitted    bool                  `json:"submitted"`
	Cause        model.SubmissionCause `json:"cause"`
	SavedText    string                `json:"saved_text"`
	FinalText    string                `json:"final_text,omitempty"`
}

// StateView is a consistent snapshot of the whole session, served to the
// client on reconnect.
type StateView struct {
	InterviewID   uuid.UUID  `json:"interview_id"`
	Phase         Phase      `json:"phase"`
	CurrentIndex  int        `json:"current_index"`
	Remaining     int        `json:"remaining_sec"`
	ActivityCount int        `json:"activity_count"`
	MediaGranted  bool       `json:"media_granted"`
	Slots         []SlotView `json:"slots"`
}

// State returns a snapshot of the session.
func (c *Controller) State() StateView {
	c.mu.Lock()
	defer c.mu.Unlock()

	slots := make([]SlotView, len(c.slots))
	for i := range c.slots {
		s := &c.slots[i]
		slots[i] = SlotView{
			Index:        i,
			QuestionID:   s.Question.ID,
			QuestionText: s.Question.QuestionText,
			TimeLimitSec: s.Question.EffectiveTimeLimit(),
			Submitted:    s.Submitted,
			Cause:        s.Cause,
			SavedText:    s.Saved,
			FinalText:    s.FinalText,
		}
	}
	return StateView{
		InterviewID:   c.id,
		Phase:         c.phase,
		CurrentIndex:  c.current,
		Remaining:     c.timer.Remaining(),
		ActivityCount: c.activity.Len(),
		MediaGranted:  c.media.Granted(),
		Slots:         slots,
	}
}

// Phase returns the current session phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// CurrentIndex returns the active question index.
func (c *Controller) CurrentIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}
