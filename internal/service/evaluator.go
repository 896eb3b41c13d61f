package service

import (
	"strings"

	"github.com/prepdeck/intervue-backend/internal/model"
	"github.com/prepdeck/intervue-backend/internal/session"
)

// Evaluator turns a finished interview's bundle into a scored report.
// The scoring here is a deterministic heuristic: answer length, keyword
// overlap with the question, and a flat zero for skipped answers. It runs
// inside the analysis worker, so a heavier scoring backend can replace it
// without touching the session path.
type Evaluator struct{}

// NewEvaluator creates an Evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Analyze scores every response in the bundle and aggregates the report.
func (e *Evaluator) Analyze(bundle *model.AnalysisBundle) *model.Report {
	feedback := make([]model.QuestionFeedback, 0, len(bundle.Responses))
	var total float64

	for _, resp := range bundle.Responses {
		score, note := e.scoreResponse(resp.QuestionText, resp.UserResponse)
		total += score
		feedback = append(feedback, model.QuestionFeedback{
			QuestionID:   resp.QuestionID,
			QuestionText: resp.QuestionText,
			UserResponse: resp.UserResponse,
			Score:        score,
			Feedback:     note,
		})
	}

	avg := 0.0
	if len(feedback) > 0 {
		avg = total / float64(len(feedback))
	}
	return &model.Report{
		InterviewID:    bundle.InterviewID,
		TotalQuestions: len(bundle.Responses),
		AverageScore:   avg,
		Feedback:       feedback,
	}
}

// Score evaluates one answer on its own, used for the instant feedback
// sent after a manual submission.
func (e *Evaluator) Score(question, answer string) (float64, string) {
	return e.scoreResponse(question, answer)
}

func (e *Evaluator) scoreResponse(question, answer string) (float64, string) {
	switch answer {
	case session.TimeoutFallbackText:
		return 0, "No answer was given before time ran out."
	case session.NoResponseText:
		return 0, "The question was not answered."
	}

	words := strings.Fields(answer)
	if len(words) == 0 {
		return 0, "The answer was empty."
	}

	// Length component: caps at 60 points around a 80-word answer.
	lengthScore := float64(len(words)) * 0.75
	if lengthScore > 60 {
		lengthScore = 60
	}

	// Relevance component: overlap between question terms and the answer.
	overlapScore := keywordOverlap(question, answer) * 40

	score := lengthScore + overlapScore
	if score > 100 {
		score = 100
	}

	switch {
	case score >= 75:
		return score, "A thorough answer that directly addresses the question."
	case score >= 40:
		return score, "A reasonable answer; more depth and specifics would strengthen it."
	default:
		return score, "The answer is too brief or strays from the question."
	}
}

// keywordOverlap returns the fraction of significant question terms that
// appear in the answer.
func keywordOverlap(question, answer string) float64 {
	answerWords := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(answer)) {
		answerWords[strings.Trim(w, ".,!?;:")] = true
	}

	matched, significant := 0, 0
	for _, w := range strings.Fields(strings.ToLower(question)) {
		w = strings.Trim(w, ".,!?;:")
		if len(w) < 4 {
			continue
		}
		significant++
		if answerWords[w] {
			matched++
		}
	}
	if significant == 0 {
		return 0
	}
	return float64(matched) / float64(significant)
}
