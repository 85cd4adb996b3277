package services

import (
	"encoding/json"

	"github.com/prepkart/prepkart-api/internal/models"
)

// AttemptScore is the server-computed outcome of one attempt. Client-supplied
// correct/wrong/percentage figures are never trusted; these values are
// recomputed from the question set and the raw answers and stored instead.
type AttemptScore struct {
	TotalQuestions int     `json:"total_questions"`
	Attempted      int     `json:"attempted"`
	Correct        int     `json:"correct"`
	Wrong          int     `json:"wrong"`
	Score          float64 `json:"score"`
	MaxScore       float64 `json:"max_score"`
	Percentage     float64 `json:"percentage"`
}

// ScoreAttempt grades every question against the answer set. Marks are added
// for a fully correct answer, negative marks subtracted for an attempted but
// incorrect one, and unattempted questions score zero. The percentage is the
// score over the maximum achievable, floored at zero.
func ScoreAttempt(questions []*models.Question, answers models.AnswerSet) AttemptScore {
	score := AttemptScore{TotalQuestions: len(questions)}

	for _, q := range questions {
		score.MaxScore += q.Marks

		answer, ok := answers[q.Code]
		if !ok || isEmptyAnswer(answer) {
			continue
		}
		score.Attempted++

		if isAnswerCorrect(q, answer) {
			score.Correct++
			score.Score += q.Marks
		} else {
			score.Wrong++
			score.Score -= q.NegativeMarks
		}
	}

	if score.MaxScore > 0 {
		pct := score.Score / score.MaxScore * 100
		if pct < 0 {
			pct = 0
		}
		score.Percentage = pct
	}

	return score
}

func isEmptyAnswer(a models.SubmittedAnswer) bool {
	return len(a.Selected) == 0 && len(a.Matches) == 0
}

// isAnswerCorrect compares per question type. No partial credit anywhere:
// checkbox needs the exact correct set, matching the exact mapping.
func isAnswerCorrect(q *models.Question, answer models.SubmittedAnswer) bool {
	switch q.Type {
	case models.QuestionRadio, models.QuestionTrueFalse:
		opts, err := parseOptions(q.Options)
		if err != nil || len(opts.CorrectAnswers) != 1 {
			return false
		}
		return len(answer.Selected) == 1 && answer.Selected[0] == opts.CorrectAnswers[0]

	case models.QuestionCheckbox:
		opts, err := parseOptions(q.Options)
		if err != nil {
			return false
		}
		return sameStringSet(answer.Selected, opts.CorrectAnswers)

	case models.QuestionMatching:
		content, err := parseMatching(q.MatchingPairs)
		if err != nil {
			return false
		}
		return sameMapping(answer.Matches, content.CorrectMatches)

	default:
		return false
	}
}

func parseOptions(raw []byte) (*models.QuestionOptions, error) {
	var opts models.QuestionOptions
	if err := json.Unmarshal(raw, &opts); err != nil {
		return nil, err
	}
	return &opts, nil
}

func parseMatching(raw []byte) (*models.MatchingContent, error) {
	var content models.MatchingContent
	if err := json.Unmarshal(raw, &content); err != nil {
		return nil, err
	}
	return &content, nil
}

func sameStringSet(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, s := range a {
		set[s] = true
	}
	if len(set) != len(b) {
		return false
	}
	for _, s := range b {
		if !set[s] {
			return false
		}
	}
	return true
}

func sameMapping(a, b map[string]string) bool {
	if len(a) != len(b) || len(b) == 0 {
		return false
	}
	for left, right := range b {
		if a[left] != right {
			return false
		}
	}
	return true
}
