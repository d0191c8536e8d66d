package validator

import (
	"github.com/SAP-F-2025/exam-session-service/internal/errors"
	"github.com/SAP-F-2025/exam-session-service/internal/models"
)

// SessionValidator checks learner input against the loaded test content.
// Questions the snapshot does not know are left to the tracker, which
// accepts any id.
type SessionValidator struct{}

func NewSessionValidator() *SessionValidator {
	return &SessionValidator{}
}

// ValidateResponse checks the shape of the ids in a response update.
func (v *SessionValidator) ValidateResponse(questionID string, update models.ResponseUpdate) error {
	var errs ValidationErrors
	if !IsValidID(questionID) {
		errs = append(errs, errors.FieldError("question_id", "question_id", questionID, "is not a valid id"))
	}
	for _, id := range update.SelectedOptionIDs {
		if !IsValidID(id) {
			errs = append(errs, errors.FieldError("selected_option_ids", "question_id", id, "contains an invalid id"))
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateOption checks the shape of a single option toggle.
func (v *SessionValidator) ValidateOption(questionID, optionID string) error {
	if !IsValidID(optionID) {
		return ValidationErrors{errors.FieldError("option_id", "question_id", optionID, "is not a valid id")}
	}
	return v.ValidateResponse(questionID, models.ResponseUpdate{})
}

// ForeignOptions returns the option ids that do not belong to the question.
// Unknown questions and a missing snapshot yield nil.
func (v *SessionValidator) ForeignOptions(snapshot *models.TestSnapshot, questionID string, optionIDs []string) []string {
	question := findQuestion(snapshot, questionID)
	if question == nil {
		return nil
	}
	var foreign []string
	for _, id := range optionIDs {
		if !hasOption(question, id) {
			foreign = append(foreign, id)
		}
	}
	return foreign
}

// ValidateTimeLimit checks a limit in minutes.
func (v *SessionValidator) ValidateTimeLimit(minutes int) error {
	if minutes < 0 || minutes > MaxTimeLimitMinutes {
		return ValidationErrors{errors.FieldError("minutes", "time_limit", minutes, "must be between 0 and %d", MaxTimeLimitMinutes)}
	}
	return nil
}

func findQuestion(snapshot *models.TestSnapshot, questionID string) *models.PracticeQuestion {
	for _, q := range snapshot.Questions() {
		if q.Question.ID == questionID {
			return q.Question
		}
	}
	return nil
}

func hasOption(q *models.PracticeQuestion, optionID string) bool {
	for _, o := range q.Options {
		if o.ID == optionID {
			return true
		}
	}
	return false
}
