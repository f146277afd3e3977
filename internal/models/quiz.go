package models

// QuizView is what a learner sees before submitting: questions and options
// with correct answers stripped. The redaction is a hard invariant, never an
// optimization.
type QuizView struct {
	ModuleIndex int            `json:"module_index"`
	Questions   []QuestionView `json:"questions"`
}

type QuestionView struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// View redacts the quiz for learner consumption.
func (q *ModuleQuiz) View() QuizView {
	questions := make([]QuestionView, len(q.Questions))
	for i, question := range q.Questions {
		questions[i] = QuestionView{Text: question.Text, Options: question.Options}
	}
	return QuizView{ModuleIndex: q.ModuleIndex, Questions: questions}
}

// SubmissionResult is returned from a quiz submission. On a failed attempt
// Score, Percentage and CorrectAnswers stay empty so repeated probing leaks
// nothing beyond pass/fail.
type SubmissionResult struct {
	Passed            bool     `json:"passed"`
	Score             int      `json:"score,omitempty"`
	Percentage        int      `json:"percentage,omitempty"`
	CorrectAnswers    []string `json:"correct_answers,omitempty"`
	IsCourseCompleted bool     `json:"is_course_completed"`
	Message           string   `json:"message"`
}
