package questions

// Alternative is a normalized answer choice.
type Alternative struct {
	Letter    string `json:"letter"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
	ImageRef  string `json:"imageRef,omitempty"`
}

// Question is the internal, sanitized representation of an exam question.
// It is transient: constructed per fetch, discarded after use unless a
// caller persists its (Year, Index) reference.
type Question struct {
	Year       int    `json:"year"`
	Index      int    `json:"index"`
	Discipline string `json:"discipline"`
	Language   string `json:"language,omitempty"`
	Title      string `json:"title"`

	// Number is the 1-based display position assigned at assembly time,
	// independent of the original exam index.
	Number int `json:"number"`

	EnunciationRaw  string `json:"enunciationRaw"`
	EnunciationHTML string `json:"enunciationHtml"`
	EnunciationText string `json:"enunciationText"`

	ImageRefs []string `json:"imageRefs,omitempty"`

	// CorrectAlternative is pass-through data from the source; no grading
	// logic relies on it.
	CorrectAlternative string `json:"correctAlternative,omitempty"`

	Alternatives []Alternative `json:"alternatives"`
}
