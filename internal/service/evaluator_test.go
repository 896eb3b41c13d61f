package service

import (
	"testing"

	"github.com/google/uuid"

	"github.com/prepdeck/intervue-backend/internal/model"
	"github.com/prepdeck/intervue-backend/internal/session"
)

func TestEvaluatorSentinelsScoreZero(t *testing.T) {
	e := NewEvaluator()

	for _, answer := range []string{session.TimeoutFallbackText, session.NoResponseText, ""} {
		score, note := e.Score("Describe a production incident you debugged.", answer)
		if score != 0 {
			t.Errorf("answer %q: expected score 0, got %.1f", answer, score)
		}
		if note == "" {
			t.Errorf("answer %q: expected feedback note", answer)
		}
	}
}

func TestEvaluatorRewardsRelevantAnswers(t *testing.T) {
	e := NewEvaluator()
	question := "Describe a production incident you debugged and how you found the root cause."

	onTopic, _ := e.Score(question, "The production incident I debugged started with a memory leak. "+
		"I traced the root cause to an unbounded cache and confirmed it by replaying traffic in staging. "+
		"After the fix the incident never recurred and we added an alert on cache growth.")
	offTopic, _ := e.Score(question, "I like working with computers and my hobbies include hiking and chess.")

	if onTopic <= offTopic {
		t.Errorf("expected on-topic answer to outscore off-topic: %.1f vs %.1f", onTopic, offTopic)
	}
	if onTopic > 100 {
		t.Errorf("score exceeds cap: %.1f", onTopic)
	}
}

func TestEvaluatorAnalyzeAggregates(t *testing.T) {
	e := NewEvaluator()
	bundle := &model.AnalysisBundle{
		InterviewID: uuid.New(),
		Responses: []model.ResponseSummary{
			{QuestionID: uuid.New(), QuestionText: "What is a goroutine?", UserResponse: "A goroutine is a lightweight thread managed by the runtime scheduler."},
			{QuestionID: uuid.New(), QuestionText: "Explain channels.", UserResponse: session.TimeoutFallbackText},
		},
	}

	report := e.Analyze(bundle)

	if report.InterviewID != bundle.InterviewID {
		t.Errorf("interview ID not carried over")
	}
	if report.TotalQuestions != 2 {
		t.Errorf("expected 2 questions, got %d", report.TotalQuestions)
	}
	if len(report.Feedback) != 2 {
		t.Fatalf("expected 2 feedback entries, got %d", len(report.Feedback))
	}
	if report.Feedback[1].Score != 0 {
		t.Errorf("timed-out answer should score 0, got %.1f", report.Feedback[1].Score)
	}

	want := (report.Feedback[0].Score + report.Feedback[1].Score) / 2
	if report.AverageScore != want {
		t.Errorf("average %.2f, want %.2f", report.AverageScore, want)
	}
}

func TestEvaluatorAnalyzeEmptyBundle(t *testing.T) {
	e := NewEvaluator()
	report := e.Analyze(&model.AnalysisBundle{InterviewID: uuid.New()})

	if report.TotalQuestions != 0 || report.AverageScore != 0 {
		t.Errorf("empty bundle: got total=%d avg=%.1f", report.TotalQuestions, report.AverageScore)
	}
}
