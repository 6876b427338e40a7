package enem

// Alternative is one answer choice as returned by the questions API.
type Alternative struct {
	Letter    string `json:"letter"`
	Text      string `json:"text"`
	File      string `json:"file,omitempty"`
	IsCorrect bool   `json:"isCorrect"`
}

// Question is the wire representation of a single exam question.
type Question struct {
	Title                    string        `json:"title"`
	Index                    int           `json:"index"`
	Year                     int           `json:"year"`
	Language                 string        `json:"language,omitempty"`
	Discipline               string        `json:"discipline"`
	Context                  string        `json:"context"`
	Files                    []string      `json:"files,omitempty"`
	CorrectAlternative       string        `json:"correctAlternative"`
	AlternativesIntroduction string        `json:"alternativesIntroduction,omitempty"`
	Alternatives             []Alternative `json:"alternatives"`
}

type batchMetadata struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	Total   int  `json:"total"`
	HasMore bool `json:"hasMore"`
}

type batchResponse struct {
	Metadata  *batchMetadata `json:"metadata"`
	Questions []Question     `json:"questions"`
}

// Batch is one page of questions from the source.
type Batch struct {
	Questions []Question
	HasMore   bool
}
