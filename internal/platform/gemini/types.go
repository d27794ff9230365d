package gemini

// questionsPrompt is the data for the question generation template.
type questionsPrompt struct {
	Role       string
	Experience string
	FocusAreas []string
	Count      int
	Exclude    []string
}

type explanationPrompt struct {
	Question string
	Answer   string
}

type evaluationPrompt struct {
	Question       string
	ExpectedAnswer string
	UserAnswer     string
}

// questionsResponse is the JSON the model returns for question generation.
type questionsResponse struct {
	Questions []questionSchema `json:"questions"`
}

type questionSchema struct {
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"`
}

// evaluationResponse is the JSON the model returns when grading an answer.
type evaluationResponse struct {
	IsCorrect *bool  `json:"is_correct"`
	Score     int    `json:"score"`
	Feedback  string `json:"feedback"`
}
