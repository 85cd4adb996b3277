package models

// SubmittedAnswer is the per-question entry in a submission's answer map.
// Selected carries the chosen option(s) for radio/checkbox/truefalse;
// Matches carries the left->right mapping for matching questions.
type SubmittedAnswer struct {
	Selected []string          `json:"selected,omitempty"`
	Matches  map[string]string `json:"matches,omitempty"`
}

// AnswerSet maps question code to what the student submitted for it.
// A question absent from the set counts as unattempted.
type AnswerSet map[string]SubmittedAnswer
