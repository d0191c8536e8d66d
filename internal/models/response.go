package models

// Response is the learner's current answer to one question.
type Response struct {
	QuestionID        string   `json:"question_id"`
	SelectedOptionIDs []string `json:"selected_option_ids"`
	FreeTextAnswer    *string  `json:"free_text_answer,omitempty"`
}

// Answered reports whether the response carries a selection or non-empty text.
func (r *Response) Answered() bool {
	if r == nil {
		return false
	}
	if len(r.SelectedOptionIDs) > 0 {
		return true
	}
	return r.FreeTextAnswer != nil && *r.FreeTextAnswer != ""
}

// HasOption reports whether optionID is part of the selection.
func (r *Response) HasOption(optionID string) bool {
	if r == nil {
		return false
	}
	for _, id := range r.SelectedOptionIDs {
		if id == optionID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy safe to hand out of the tracker.
func (r *Response) Clone() *Response {
	if r == nil {
		return nil
	}
	c := &Response{QuestionID: r.QuestionID}
	if r.SelectedOptionIDs != nil {
		c.SelectedOptionIDs = append([]string{}, r.SelectedOptionIDs...)
	}
	if r.FreeTextAnswer != nil {
		text := *r.FreeTextAnswer
		c.FreeTextAnswer = &text
	}
	return c
}

// ToQuestionAnswer converts the response to its submission form.
func (r *Response) ToQuestionAnswer() QuestionAnswer {
	c := r.Clone()
	return QuestionAnswer{
		QuestionID:        c.QuestionID,
		SelectedOptionIDs: c.SelectedOptionIDs,
		AnswerText:        c.FreeTextAnswer,
	}
}

// ResponseUpdate is a partial update for SetResponse. Nil fields keep the
// prior value unless Replace is set, in which case they are cleared.
type ResponseUpdate struct {
	SelectedOptionIDs []string `json:"selected_option_ids"`
	FreeTextAnswer    *string  `json:"free_text_answer"`
	Replace           bool     `json:"replace"`
}
