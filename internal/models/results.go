package models

// Attempt result views returned by the upstream results API.

type PartResultSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type TestResultOverall struct {
	TotalQuestions     int                 `json:"totalQuestions"`
	CorrectAnswers     int                 `json:"correctAnswers"`
	IncorrectAnswers   int                 `json:"incorrectAnswers"`
	SkippedQuestions   int                 `json:"skippedQuestions"`
	AccuracyPercentage float64             `json:"accuracyPercentage"`
	Score              float64             `json:"score"`
	CompletionTime     string              `json:"completionTime"` // HH:mm:ss
	AttemptedQuestions int                 `json:"attemptedQuestions"`
	Parts              []PartResultSummary `json:"parts"`
}

type AttemptTestInfo struct {
	TestID    string   `json:"testId"`
	TestName  string   `json:"testName"`
	PartNames []string `json:"partNames"`
}

type OptionResult struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Selected  bool   `json:"selected"`
	IsCorrect bool   `json:"isCorrect"`
}

type QuestionAudio struct {
	ID       string `json:"id"`
	FileURL  string `json:"fileUrl"`
	FileName string `json:"fileName"`
	FileSize int64  `json:"fileSize"`
	FileType string `json:"fileType"`
}

type QuestionResult struct {
	Order              int             `json:"order"`
	Context            *string         `json:"context,omitempty"`
	Explanation        *string         `json:"explanation,omitempty"`
	Transcript         *string         `json:"transcript,omitempty"`
	OuterContent       *string         `json:"outerContent,omitempty"`
	IsCorrect          *bool           `json:"isCorrect,omitempty"`
	CorrectOptions     []OptionResult  `json:"correctOptions,omitempty"`
	CorrectAnswers     []string        `json:"correctAnswers,omitempty"`
	UserAnswer         *string         `json:"userAnswer,omitempty"`
	Options            []OptionResult  `json:"options,omitempty"`
	QuestionCategories []string        `json:"questionCategories,omitempty"`
	QuestionAudios     []QuestionAudio `json:"questionAudios,omitempty"`
}

type PartAnswers struct {
	Order     int              `json:"order"`
	PartName  string           `json:"partName"`
	Questions []QuestionResult `json:"questions"`
}

type AnswerResult struct {
	Parts      []PartAnswers    `json:"parts"`
	Overall    []QuestionResult `json:"overall"`
	AudioFiles []QuestionAudio  `json:"audioFiles,omitempty"`
}

type CategoryAnalysis struct {
	CategoryName    string           `json:"categoryName"`
	CorrectNumber   int              `json:"correctNumber"`
	IncorrectNumber int              `json:"incorrectNumber"`
	SkipNumber      int              `json:"skipNumber"`
	Accuracy        float64          `json:"accuracy"`
	Questions       []QuestionResult `json:"questions"`
}

type PartAnalysis struct {
	Order      int                `json:"order"`
	PartName   string             `json:"partName"`
	Categories []CategoryAnalysis `json:"categories"`
}

type AttemptAnalysis struct {
	Parts   []PartAnalysis     `json:"parts"`
	Overall []CategoryAnalysis `json:"overall"`
}

type TestAttemptInfo struct {
	ID              string   `json:"id"`
	TakeDate        string   `json:"takeDate"`
	TakeDateLocal   string   `json:"takeDateLocal"`
	Parts           []string `json:"parts"`
	IsPractice      bool     `json:"isPractice"`
	CorrectAnswers  int      `json:"correctAnswers"`
	TotalQuestions  int      `json:"totalQuestions"`
	StartTime       string   `json:"startTime"`
	EndTime         string   `json:"endTime"`
	DurationSeconds int      `json:"durationSeconds"`
}

type TestAttemptWithName struct {
	TestAttemptInfo
	TestName string `json:"testName"`
}
