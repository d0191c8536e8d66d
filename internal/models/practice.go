package models

import "time"

// Wire types for the upstream practice-test API. Field names follow the
// backend's camelCase contract.

type PracticeTest struct {
	TestID                 string                      `json:"testId"`
	TestName               string                      `json:"testName"`
	Parts                  []PracticePart              `json:"parts"`
	QuestionAndQuestionSet []PracticeQuestionOrSetItem `json:"questionAndQuestionSet,omitempty"`
}

type PracticePart struct {
	ID                       string                      `json:"id"`
	Name                     string                      `json:"name"`
	Description              *string                     `json:"description,omitempty"`
	DurationMinutes          int                         `json:"durationInMinutes,omitempty"`
	QuestionsAndQuestionSets []PracticeQuestionOrSetItem `json:"questionsAndQuestionSets"`
}

// PracticeQuestionOrSetItem holds exactly one of Question or QuestionSet.
type PracticeQuestionOrSetItem struct {
	ID          string               `json:"id"`
	Order       int                  `json:"order"`
	QuestionSet *PracticeQuestionSet `json:"questionSet,omitempty"`
	Question    *PracticeQuestion    `json:"question,omitempty"`
}

type PracticeQuestionSet struct {
	ID             string             `json:"id"`
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	ImageURL       string             `json:"imageUrl"`
	Questions      []PracticeQuestion `json:"questions"`
	Order          int                `json:"order"`
	TotalQuestions int                `json:"totalQuestions"`
	TotalScore     float64            `json:"totalScore"`
}

type PracticeQuestion struct {
	ID             string             `json:"id"`
	Text           string             `json:"text"`
	QuestionType   string             `json:"questionType"`
	Score          *float64           `json:"score"`
	Order          int                `json:"order"`
	Options        []PracticeOption   `json:"options"`
	QuestionAudios []PracticeFileInfo `json:"questionAudios"`
}

type PracticeOption struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect *bool  `json:"isCorrect,omitempty"`
}

type PracticeFileInfo struct {
	ID   string `json:"id"`
	URL  string `json:"url"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

type PracticeTestRequest struct {
	TestID  string   `json:"testId"`
	PartIDs []string `json:"partIds,omitempty"`
}

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "IN_PROGRESS"
	AttemptCompleted  AttemptStatus = "COMPLETED"
	AttemptGraded     AttemptStatus = "GRADED"
)

type TestAttempt struct {
	ID          string        `json:"id"`
	TestID      string        `json:"testId"`
	UserID      string        `json:"userId"`
	StartedAt   string        `json:"startedAt"`
	CompletedAt *string       `json:"completedAt,omitempty"`
	Score       *float64      `json:"score,omitempty"`
	Status      AttemptStatus `json:"status"`
}

type PartAttemptStatus string

const (
	PartNotStarted PartAttemptStatus = "NOT_STARTED"
	PartInProgress PartAttemptStatus = "IN_PROGRESS"
	PartSubmitted  PartAttemptStatus = "SUBMITTED"
	PartGraded     PartAttemptStatus = "GRADED"
)

type TestPartAttempt struct {
	ID            string            `json:"id"`
	TestAttemptID string            `json:"testAttemptId"`
	TestPartID    string            `json:"testPartId"`
	StartedAt     string            `json:"startedAt"`
	SubmittedAt   *string           `json:"submittedAt,omitempty"`
	Score         *float64          `json:"score,omitempty"`
	Status        PartAttemptStatus `json:"status"`
}

type PartResult struct {
	PartID     string  `json:"partId"`
	Score      float64 `json:"score"`
	MaxScore   float64 `json:"maxScore"`
	Percentage float64 `json:"percentage"`
}

type PracticeTestResult struct {
	TestAttemptID string       `json:"testAttemptId"`
	TestID        string       `json:"testId"`
	UserID        string       `json:"userId"`
	TotalScore    float64      `json:"totalScore"`
	MaxScore      float64      `json:"maxScore"`
	Percentage    float64      `json:"percentage"`
	CompletedAt   time.Time    `json:"completedAt"`
	PartResults   []PartResult `json:"partResults"`
}

// QuestionAnswer is one entry of the submit-attempt payload.
type QuestionAnswer struct {
	QuestionID        string   `json:"questionId"`
	SelectedOptionIDs []string `json:"selectedOptionIds,omitempty"`
	AnswerText        *string  `json:"answerText,omitempty"`
}

type SubmitPracticeRequest struct {
	TestID          string           `json:"testId"`
	UserID          string           `json:"userId"`
	QuestionAnswers []QuestionAnswer `json:"questionAnswers"`
	ListPartID      []string         `json:"listPartId"`
	Duration        int              `json:"duration"` // seconds
}

type PracticeTestInfo struct {
	Skills         []string       `json:"skills"`
	TestName       string         `json:"testName"`
	Duration       string         `json:"duration"`
	Sections       int            `json:"sections"`
	Questions      int            `json:"questions"`
	Comments       int            `json:"comments"`
	PracticedUsers int            `json:"practicedUsers"`
	Note           string         `json:"note"`
	TestParts      []TestPartInfo `json:"testParts"`
}

type TestPartInfo struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	Order              int      `json:"order"`
	QuestionCount      int      `json:"questionCount"`
	QuestionCategories []string `json:"questionCategories"`
}
