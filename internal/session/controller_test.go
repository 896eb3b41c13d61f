package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/prepdeck/intervue-backend/internal/model"
)

// ─── Fakes ──────────────────────────────────────────────────────────────

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

type submitCall struct {
	questionID uuid.UUID
	text       string
	cause      model.SubmissionCause
	activity   int
}

type fakeSubmitter struct {
	mu       sync.Mutex
	calls    []submitCall
	failNext error

	// When set, Submit signals entered then parks until block is closed.
	entered chan struct{}
	block   chan struct{}
}

func (s *fakeSubmitter) Submit(ctx context.Context, interviewID, questionID uuid.UUID, text string, cause model.SubmissionCause, activity []model.ActivityEntry) error {
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, submitCall{
		questionID: questionID,
		text:       text,
		cause:      cause,
		activity:   len(activity),
	})
	err := s.failNext
	s.failNext = nil
	return err
}

// waitCalls blocks until at least n submissions were recorded. Needed
// because timeout and end-of-session submissions run on background
// goroutines.
func (s *fakeSubmitter) waitCalls(t *testing.T, n int) []submitCall {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		s.mu.Lock()
		if len(s.calls) >= n {
			out := append([]submitCall(nil), s.calls...)
			s.mu.Unlock()
			return out
		}
		s.mu.Unlock()
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d submission calls", n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

type fakeEmitter struct {
	mu     sync.Mutex
	events []Event
}

func (e *fakeEmitter) Emit(ev Event) {
	e.mu.Lock()
	e.events = append(e.events, ev)
	e.mu.Unlock()
}

func (e *fakeEmitter) countNotices(code string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, ev := range e.events {
		if ev.Type == EventNotice && ev.Code == code {
			n++
		}
	}
	return n
}

func (e *fakeEmitter) countType(t EventType) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, ev := range e.events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

type fakeHandoff struct {
	mu        sync.Mutex
	completed *model.AnalysisBundle
	abandoned []uuid.UUID
}

func (h *fakeHandoff) Completed(bundle *model.AnalysisBundle) {
	h.mu.Lock()
	h.completed = bundle
	h.mu.Unlock()
}

func (h *fakeHandoff) Abandoned(id uuid.UUID) {
	h.mu.Lock()
	h.abandoned = append(h.abandoned, id)
	h.mu.Unlock()
}

func (h *fakeHandoff) bundle() *model.AnalysisBundle {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.completed
}

// ─── Fixture ────────────────────────────────────────────────────────────

type ctrlFixture struct {
	c      *Controller
	clk    *fakeClock
	sub    *fakeSubmitter
	emit   *fakeEmitter
	hand   *fakeHandoff
	handle *fakeHandle
}

// newTestController builds a manually-ticked controller with one question
// per given time limit, questions loaded but media not yet acquired.
func newTestController(t *testing.T, limits ...int) *ctrlFixture {
	t.Helper()
	f := &ctrlFixture{
		clk:    &fakeClock{now: time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)},
		sub:    &fakeSubmitter{},
		emit:   &fakeEmitter{},
		hand:   &fakeHandoff{},
		handle: &fakeHandle{},
	}
	f.c = New(Config{
		InterviewID: uuid.New(),
		Domain:      model.Domain{Name: "Backend Engineering", AdminName: "Recruiting Team"},
		Submitter:   f.sub,
		Handoff:     f.hand,
		Emitter:     f.emit,
		Detector:    &scriptedDetector{script: []string{MovementMinimal}},
		Clock:       f.clk.Now,
		ManualTick:  true,
	})

	questions := make([]model.Question, len(limits))
	for i, limit := range limits {
		questions[i] = model.Question{
			ID:           uuid.New(),
			QuestionText: fmt.Sprintf("Question %d", i+1),
			TimeLimitSec: limit,
			OrderNum:     i + 1,
		}
	}
	if err := f.c.LoadQuestions(questions); err != nil {
		t.Fatalf("LoadQuestions: %v", err)
	}
	return f
}

func (f *ctrlFixture) mustStart(t *testing.T) {
	t.Helper()
	if err := f.c.AcquireMedia(context.Background(), ResolvedGateway{Handle: f.handle}); err != nil {
		t.Fatalf("AcquireMedia: %v", err)
	}
	if err := f.c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
}

func (f *ctrlFixture) tick() {
	f.clk.Advance(time.Second)
	f.c.mu.Lock()
	f.c.tick(f.clk.Now())
	f.c.mu.Unlock()
}

func (f *ctrlFixture) tickN(n int) {
	for i := 0; i < n; i++ {
		f.tick()
	}
}

// ─── Lifecycle ──────────────────────────────────────────────────────────

func TestControllerFullSession(t *testing.T) {
	f := newTestController(t, 30, 45, 60)
	f.mustStart(t)

	if got := f.c.Phase(); got != PhaseRunning {
		t.Fatalf("phase = %s, want RUNNING", got)
	}

	// Question 1: answered and submitted manually.
	f.tickN(2)
	f.c.Touch("answer one")
	f.tickN(2)
	if err := f.c.SubmitManual(context.Background()); err != nil {
		t.Fatalf("SubmitManual q1: %v", err)
	}
	if got := f.c.CurrentIndex(); got != 1 {
		t.Fatalf("current = %d after q1, want 1", got)
	}

	// Question 2: typed but left to expire.
	f.c.Touch("answer two")
	f.tickN(45)
	if got := f.c.CurrentIndex(); got != 2 {
		t.Fatalf("current = %d after q2 timeout, want 2", got)
	}

	// Question 3: answered manually; last submission ends the session.
	f.c.Touch("answer three")
	if err := f.c.SubmitManual(context.Background()); err != nil {
		t.Fatalf("SubmitManual q3: %v", err)
	}
	if got := f.c.Phase(); got != PhaseEnded {
		t.Fatalf("phase = %s after last submission, want ENDED", got)
	}

	state := f.c.State()
	wantCauses := []model.SubmissionCause{model.CauseManual, model.CauseTimeout, model.CauseManual}
	for i, want := range wantCauses {
		if !state.Slots[i].Submitted {
			t.Fatalf("slot %d not submitted at end", i)
		}
		if state.Slots[i].Cause != want {
			t.Fatalf("slot %d cause = %s, want %s", i, state.Slots[i].Cause, want)
		}
	}

	// The timeout submission runs on a background goroutine, so match by
	// cause rather than call order.
	calls := f.sub.waitCalls(t, 3)
	var timeoutCall *submitCall
	manualCalls := 0
	for i := range calls {
		switch calls[i].cause {
		case model.CauseTimeout:
			timeoutCall = &calls[i]
		case model.CauseManual:
			manualCalls++
		}
	}
	if timeoutCall == nil || timeoutCall.text != "answer two" {
		t.Fatalf("timeout call = %+v", timeoutCall)
	}
	if manualCalls != 2 {
		t.Fatalf("manual calls = %d, want 2", manualCalls)
	}

	bundle := f.hand.bundle()
	if bundle == nil {
		t.Fatal("no analysis bundle handed off")
	}
	if len(bundle.Responses) != 3 || bundle.Responses[2].UserResponse != "answer three" {
		t.Fatalf("bundle responses = %+v", bundle.Responses)
	}
	timeouts := 0
	for _, entry := range bundle.ActivityLog {
		if entry.Kind == model.ActivityTimeout {
			timeouts++
		}
	}
	if timeouts != 1 {
		t.Fatalf("timeout activity entries = %d, want 1", timeouts)
	}
	if f.handle.stops != 1 {
		t.Fatalf("media stops = %d, want 1", f.handle.stops)
	}
}

func TestControllerMediaDeniedThenRetry(t *testing.T) {
	f := newTestController(t, 30)

	err := f.c.AcquireMedia(context.Background(), ResolvedGateway{Err: errors.New("NotAllowedError")})
	var denied *MediaAccessDeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("err = %v, want MediaAccessDeniedError", err)
	}
	if got := f.c.Phase(); got != PhaseAwaitingPermissions {
		t.Fatalf("phase = %s after denial, want AWAITING_PERMISSIONS", got)
	}

	if err := f.c.AcquireMedia(context.Background(), ResolvedGateway{Handle: f.handle}); err != nil {
		t.Fatalf("retry AcquireMedia: %v", err)
	}
	if got := f.c.Phase(); got != PhaseReady {
		t.Fatalf("phase = %s after grant, want READY", got)
	}
}

func TestControllerStartRequiresReady(t *testing.T) {
	f := newTestController(t, 30)

	err := f.c.Start()
	var pe *PhaseError
	if !errors.As(err, &pe) {
		t.Fatalf("Start before media: err = %v, want PhaseError", err)
	}
}

func TestControllerStartRejectsEmptyQuestionSet(t *testing.T) {
	f := newTestController(t)
	if err := f.c.AcquireMedia(context.Background(), ResolvedGateway{Handle: f.handle}); err != nil {
		t.Fatalf("AcquireMedia: %v", err)
	}
	if err := f.c.Start(); !errors.Is(err, ErrEmptyQuestionSet) {
		t.Fatalf("err = %v, want ErrEmptyQuestionSet", err)
	}
	if got := f.c.Phase(); got != PhaseReady {
		t.Fatalf("phase = %s, want READY", got)
	}
}

// ─── Submission coordination ────────────────────────────────────────────

func TestControllerSubmitEmptyAnswer(t *testing.T) {
	f := newTestController(t, 30)
	f.mustStart(t)

	f.c.Touch("   ")
	if err := f.c.SubmitManual(context.Background()); !errors.Is(err, ErrEmptyAnswer) {
		t.Fatalf("err = %v, want ErrEmptyAnswer", err)
	}
}

func TestControllerDuplicateSubmissionRejected(t *testing.T) {
	f := newTestController(t, 30, 30)
	f.mustStart(t)
	f.c.Touch("late click")

	// A submission landing after the slot already froze must be discarded
	// with a visible notice, never sent.
	f.c.mu.Lock()
	f.c.slots[0].Submitted = true
	f.c.slots[0].Cause = model.CauseTimeout
	f.c.mu.Unlock()

	if err := f.c.SubmitManual(context.Background()); !errors.Is(err, ErrDuplicateSubmission) {
		t.Fatalf("err = %v, want ErrDuplicateSubmission", err)
	}
	if got := f.emit.countNotices(NoticeDuplicateSubmission); got != 1 {
		t.Fatalf("duplicate notices = %d, want 1", got)
	}
	if calls := f.sub.waitCalls(t, 0); len(calls) != 0 {
		t.Fatalf("submitter called %d times, want 0", len(calls))
	}
}

func TestControllerManualFailureIsRetryable(t *testing.T) {
	f := newTestController(t, 60, 60)
	f.mustStart(t)

	f.c.Touch("first attempt")
	f.sub.failNext = ErrSubmitNetwork
	if err := f.c.SubmitManual(context.Background()); !errors.Is(err, ErrSubmitNetwork) {
		t.Fatalf("err = %v, want ErrSubmitNetwork", err)
	}

	state := f.c.State()
	if state.Slots[0].Submitted {
		t.Fatal("slot frozen by a failed manual submission")
	}
	if state.CurrentIndex != 0 {
		t.Fatalf("advanced past a failed submission: index %d", state.CurrentIndex)
	}
	if got := f.emit.countNotices(NoticeSubmitFailed); got != 1 {
		t.Fatalf("submit-failed notices = %d, want 1", got)
	}

	if err := f.c.SubmitManual(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if got := f.c.CurrentIndex(); got != 1 {
		t.Fatalf("current = %d after retry, want 1", got)
	}
	calls := f.sub.waitCalls(t, 2)
	if calls[0].text != "first attempt" || calls[1].text != "first attempt" {
		t.Fatalf("retry sent different text: %+v", calls)
	}
}

func TestControllerUnauthorizedFailureNotice(t *testing.T) {
	f := newTestController(t, 60, 60)
	f.mustStart(t)

	f.c.Touch("answer")
	f.sub.failNext = ErrSubmitUnauthorized
	if err := f.c.SubmitManual(context.Background()); !errors.Is(err, ErrSubmitUnauthorized) {
		t.Fatalf("err = %v, want ErrSubmitUnauthorized", err)
	}
	if got := f.emit.countNotices(NoticeSessionExpired); got != 1 {
		t.Fatalf("session-expired notices = %d, want 1", got)
	}
}

func TestControllerTimeoutFailureStillAdvances(t *testing.T) {
	f := newTestController(t, 5, 60)
	f.mustStart(t)

	f.c.Touch("half-typed")
	f.sub.failNext = ErrSubmitNetwork
	f.tickN(5)

	// The backend call failed, but the slot is committed locally and the
	// session moves on.
	f.sub.waitCalls(t, 1)
	state := f.c.State()
	if !state.Slots[0].Submitted || state.Slots[0].Cause != model.CauseTimeout {
		t.Fatalf("slot 0 = %+v, want submitted by timeout", state.Slots[0])
	}
	if state.CurrentIndex != 1 || state.Phase != PhaseRunning {
		t.Fatalf("index %d phase %s, want 1 RUNNING", state.CurrentIndex, state.Phase)
	}
	if got := f.emit.countNotices(NoticeSubmitFailed); got != 0 {
		t.Fatalf("timeout failure surfaced a blocking notice")
	}
}

func TestControllerTimeoutFallbackText(t *testing.T) {
	f := newTestController(t, 5)
	f.mustStart(t)
	f.tickN(5)

	if got := f.c.Phase(); got != PhaseEnded {
		t.Fatalf("phase = %s, want ENDED", got)
	}
	calls := f.sub.waitCalls(t, 1)
	if calls[0].text != TimeoutFallbackText || calls[0].cause != model.CauseTimeout {
		t.Fatalf("call = %+v, want fallback text", calls[0])
	}
	if got := f.emit.countNotices(NoticeAutoSubmitted); got != 1 {
		t.Fatalf("auto-submitted notices = %d, want 1", got)
	}
}

func TestControllerTimeoutUsesLastSavedWhenDraftCleared(t *testing.T) {
	f := newTestController(t, 10)
	f.mustStart(t)

	f.c.Touch("kept answer")
	f.tickN(2) // debounce elapses, draft auto-saved
	f.c.Touch("")
	f.tickN(8)

	calls := f.sub.waitCalls(t, 1)
	if calls[0].text != "kept answer" {
		t.Fatalf("timeout text = %q, want last saved buffer", calls[0].text)
	}
}

func TestControllerManualWinsOverConcurrentTimeout(t *testing.T) {
	f := newTestController(t, 5)
	f.mustStart(t)
	f.c.Touch("racing answer")

	f.sub.entered = make(chan struct{}, 1)
	f.sub.block = make(chan struct{})

	errCh := make(chan error, 1)
	go func() { errCh <- f.c.SubmitManual(context.Background()) }()
	<-f.sub.entered

	// The countdown expires while the manual call is on the wire. The
	// timeout must defer, not double-submit.
	f.tickN(5)
	if state := f.c.State(); state.Slots[0].Submitted {
		t.Fatal("timeout froze a slot with a manual submission in flight")
	}

	close(f.sub.block)
	if err := <-errCh; err != nil {
		t.Fatalf("SubmitManual: %v", err)
	}

	state := f.c.State()
	if state.Slots[0].Cause != model.CauseManual {
		t.Fatalf("cause = %s, want manual", state.Slots[0].Cause)
	}
	if state.Phase != PhaseEnded {
		t.Fatalf("phase = %s, want ENDED", state.Phase)
	}
	calls := f.sub.waitCalls(t, 1)
	if len(calls) != 1 {
		t.Fatalf("submission calls = %d, want exactly 1", len(calls))
	}
}

func TestControllerDeferredTimeoutRunsWhenManualFails(t *testing.T) {
	f := newTestController(t, 5)
	f.mustStart(t)
	f.c.Touch("racing answer")

	f.sub.entered = make(chan struct{}, 1)
	f.sub.block = make(chan struct{})
	f.sub.failNext = ErrSubmitNetwork

	errCh := make(chan error, 1)
	go func() { errCh <- f.c.SubmitManual(context.Background()) }()
	<-f.sub.entered
	f.tickN(5)
	close(f.sub.block)

	if err := <-errCh; !errors.Is(err, ErrSubmitNetwork) {
		t.Fatalf("err = %v, want ErrSubmitNetwork", err)
	}

	// The deferred timeout takes over so the session never stalls.
	calls := f.sub.waitCalls(t, 2)
	if calls[1].cause != model.CauseTimeout || calls[1].text != "racing answer" {
		t.Fatalf("deferred timeout call = %+v", calls[1])
	}
	state := f.c.State()
	if !state.Slots[0].Submitted || state.Slots[0].Cause != model.CauseTimeout {
		t.Fatalf("slot = %+v, want frozen by timeout", state.Slots[0])
	}
	if state.Phase != PhaseEnded {
		t.Fatalf("phase = %s, want ENDED", state.Phase)
	}
}

// ─── Navigation and teardown ────────────────────────────────────────────

func TestControllerBackModalKeepsCountdownRunning(t *testing.T) {
	f := newTestController(t, 30)
	f.mustStart(t)
	f.tickN(3)

	f.c.BackIntent()
	if got := f.emit.countType(EventModal); got != 1 {
		t.Fatalf("modal events = %d, want 1", got)
	}

	before := f.c.State().Remaining
	f.tickN(4)
	after := f.c.State().Remaining
	if after != before-4 {
		t.Fatalf("remaining %d -> %d, countdown paused under modal", before, after)
	}

	f.c.Stay()
	if got := f.c.State().Remaining; got != after {
		t.Fatalf("Stay changed remaining: %d -> %d", after, got)
	}
	if got := f.c.Phase(); got != PhaseRunning {
		t.Fatalf("phase = %s after Stay, want RUNNING", got)
	}
}

func TestControllerConfirmLeaveAbandons(t *testing.T) {
	f := newTestController(t, 30)
	f.mustStart(t)
	f.c.Touch("unsaved work")
	f.c.BackIntent()

	if err := f.c.ConfirmLeave(); err != nil {
		t.Fatalf("ConfirmLeave: %v", err)
	}
	if got := f.c.Phase(); got != PhaseEnded {
		t.Fatalf("phase = %s, want ENDED", got)
	}
	if f.handle.stops != 1 {
		t.Fatalf("media stops = %d, want 1", f.handle.stops)
	}
	if f.hand.bundle() != nil {
		t.Fatal("abandoned session handed off an analysis bundle")
	}
	f.hand.mu.Lock()
	abandoned := len(f.hand.abandoned)
	f.hand.mu.Unlock()
	if abandoned != 1 {
		t.Fatalf("abandoned callbacks = %d, want 1", abandoned)
	}
	if len(f.sub.waitCalls(t, 0)) != 0 {
		t.Fatal("abandoning submitted an answer")
	}
}

func TestControllerEndForceSubmitsCurrentDraft(t *testing.T) {
	f := newTestController(t, 60, 60)
	f.mustStart(t)
	f.c.Touch("partial thoughts")

	if err := f.c.End(context.Background()); err != nil {
		t.Fatalf("End: %v", err)
	}
	if got := f.c.Phase(); got != PhaseEnded {
		t.Fatalf("phase = %s, want ENDED", got)
	}

	calls := f.sub.waitCalls(t, 1)
	if calls[0].text != "partial thoughts" || calls[0].cause != model.CauseManual {
		t.Fatalf("forced submission = %+v", calls[0])
	}

	bundle := f.hand.bundle()
	if bundle == nil {
		t.Fatal("no bundle after End")
	}
	if bundle.Responses[0].UserResponse != "partial thoughts" {
		t.Fatalf("response 0 = %q", bundle.Responses[0].UserResponse)
	}
	if bundle.Responses[1].UserResponse != NoResponseText {
		t.Fatalf("response 1 = %q, want placeholder", bundle.Responses[1].UserResponse)
	}
}

func TestControllerActivityRecording(t *testing.T) {
	f := newTestController(t, 60)
	f.mustStart(t)

	f.c.RecordBlur()
	f.c.RecordHidden()
	f.c.RecordPasteBlocked()
	if got := f.emit.countNotices(NoticePasteBlocked); got != 1 {
		t.Fatalf("paste-blocked notices = %d, want 1", got)
	}

	// session-start plus the three recorded events.
	if got := f.c.State().ActivityCount; got != 4 {
		t.Fatalf("activity count = %d, want 4", got)
	}

	// Nothing records after the session ends.
	if err := f.c.ConfirmLeave(); err != nil {
		t.Fatalf("ConfirmLeave: %v", err)
	}
	f.c.RecordBlur()
	if got := f.c.State().ActivityCount; got != 4 {
		t.Fatalf("activity count after end = %d, want 4", got)
	}
}

func TestControllerTouchIgnoredOutsideRunning(t *testing.T) {
	f := newTestController(t, 30)
	f.c.Touch("too early")
	if got := f.c.State().Slots[0].SavedText; got != "" {
		t.Fatalf("saved = %q before start", got)
	}

	f.mustStart(t)
	f.c.Touch("in session")
	if err := f.c.ConfirmLeave(); err != nil {
		t.Fatalf("ConfirmLeave: %v", err)
	}
	f.c.Touch("after end")

	f.c.mu.Lock()
	draft := f.c.slots[0].Draft
	f.c.mu.Unlock()
	if draft != "in session" {
		t.Fatalf("draft = %q, want the in-session buffer", draft)
	}
}

func TestRestoreDraftsSeedsSlots(t *testing.T) {
	f := newTestController(t, 30, 30)

	f.c.RestoreDrafts(map[int]string{
		0:  "half-written answer",
		1:  "second draft",
		5:  "out of range",
		-1: "negative index",
	})

	state := f.c.State()
	if state.Slots[0].SavedText != "half-written answer" {
		t.Errorf("slot 0 saved = %q", state.Slots[0].SavedText)
	}
	if state.Slots[1].SavedText != "second draft" {
		t.Errorf("slot 1 saved = %q", state.Slots[1].SavedText)
	}

	// Once running, restores are ignored.
	f.mustStart(t)
	f.c.RestoreDrafts(map[int]string{0: "late restore"})
	if got := f.c.State().Slots[0].SavedText; got != "half-written answer" {
		t.Errorf("running restore overwrote slot: %q", got)
	}
}
