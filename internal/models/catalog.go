package models

// Content-management resources exposed by the upstream admin API.

type FileInfo struct {
	ID       string `json:"id"`
	FileName string `json:"fileName"`
	FileURL  string `json:"fileUrl"`
	FileType string `json:"fileType"`
	FileSize int64  `json:"fileSize"`
}

type Option struct {
	ID      string `json:"id,omitempty"`
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

type QuestionType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code,omitempty"`
	Description string `json:"description,omitempty"`
}

type QuestionCategory struct {
	ID    string `json:"id"`
	Code  string `json:"code"`
	Skill string `json:"skill"`
	Name  string `json:"name"`
}

type QuestionCategoryRequest struct {
	Code  string `json:"code" validate:"required,max=50"`
	Name  string `json:"name" validate:"required,max=200"`
	Skill string `json:"skill" validate:"required"`
}

type Question struct {
	ID               string           `json:"id"`
	Prompt           string           `json:"prompt"`
	QuestionCategory QuestionCategory `json:"questionCategory"`
	QuestionType     QuestionType     `json:"questionType"`
	Score            float64          `json:"score"`
	QuestionAnswers  []string         `json:"questionAnswers"`
	Options          []Option         `json:"options"`
	QuestionAudios   []FileInfo       `json:"questionAudios"`
}

type QuestionSetItem struct {
	ID         string `json:"id"`
	QuestionID string `json:"questionId"`
	Order      int    `json:"order"`
}

type QuestionSet struct {
	ID               string            `json:"id"`
	Title            string            `json:"title"`
	Description      *string           `json:"description,omitempty"`
	Order            int               `json:"order"`
	ImageURL         *string           `json:"imageUrl,omitempty"`
	QuestionSetItems []QuestionSetItem `json:"questionSetItems"`
	Files            []FileInfo        `json:"files"`
}

type ItemOrder struct {
	ID    string `json:"id"`
	Order int    `json:"order"`
}

type Skill struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

type TestCategory struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Code        *string `json:"code,omitempty"`
	Description *string `json:"description,omitempty"`
}

type Part struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description,omitempty"`
}

type TestQuestion struct {
	ID               string           `json:"id"`
	PartID           string           `json:"partId"`
	Prompt           string           `json:"prompt"`
	QuestionCategory QuestionCategory `json:"questionCategory"`
	QuestionType     QuestionType     `json:"questionType"`
	Score            float64          `json:"score"`
	QuestionAnswers  []string         `json:"questionAnswers"`
	Options          []Option         `json:"options"`
	QuestionAudios   []FileInfo       `json:"questionAudios"`
	Order            int              `json:"order"`
}

type TestQuestionSet struct {
	ID             string         `json:"id"`
	PartID         string         `json:"partId"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	ImageURL       string         `json:"imageUrl"`
	Order          int            `json:"order"`
	Questions      []TestQuestion `json:"questions"`
	TotalQuestions int            `json:"totalQuestions"`
	TotalScore     float64        `json:"totalScore"`
}

type TestPartDetail struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	Order          int               `json:"order"`
	QuestionSets   []TestQuestionSet `json:"questionSets"`
	Questions      []TestQuestion    `json:"questions"`
	TotalQuestions int               `json:"totalQuestions,omitempty"`
	TotalScore     float64           `json:"totalScore,omitempty"`
}

type TestQuestionItem struct {
	Question    *TestQuestion    `json:"question,omitempty"`
	QuestionSet *TestQuestionSet `json:"questionSet,omitempty"`
	Order       int              `json:"order"`
}

type Test struct {
	ID               string             `json:"id"`
	Title            string             `json:"title"`
	ListPart         []TestPartDetail   `json:"listPart"`
	ListQuestionItem []TestQuestionItem `json:"listQuestionItem"`
	ListSkill        []Skill            `json:"listSkill"`
	TestCategory     TestCategory       `json:"testCategory"`
	IsActive         bool               `json:"isActive"`
}

type TestSimple struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	ListSkill []Skill `json:"listSkill"`
}

type TestQuestionOrder struct {
	QuestionID string `json:"questionId"`
	Order      int    `json:"order"`
}

type TestQuestionSetOrder struct {
	QuestionSetID string `json:"questionSetId"`
	Order         int    `json:"order"`
}

// TestData is the JSON document sent as the "testData" form field when a
// test is created or edited.
type TestData struct {
	ID              string                 `json:"id,omitempty"`
	Title           string                 `json:"title" validate:"required"`
	ListPart        []TestPartDetail       `json:"listPart"`
	ListQuestionSet []TestQuestionSetOrder `json:"listQuestionSet"`
	ListQuestion    []TestQuestionOrder    `json:"listQuestion"`
	SkillIDs        []string               `json:"skillIds"`
	TestCategoryID  string                 `json:"testCategoryId" validate:"required"`
}

// Page mirrors the backend's paged response envelope.
type Page[T any] struct {
	Content          []T  `json:"content"`
	TotalPages       int  `json:"totalPages"`
	TotalElements    int  `json:"totalElements"`
	Size             int  `json:"size"`
	Number           int  `json:"number"`
	First            bool `json:"first"`
	Last             bool `json:"last"`
	NumberOfElements int  `json:"numberOfElements"`
	Empty            bool `json:"empty"`
}
