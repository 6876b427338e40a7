package exams

import "time"

// QuestionRef locates a question at the source. Saved exams persist only
// these references; full bodies are re-fetched on read and export.
type QuestionRef struct {
	Year  int `json:"year"`
	Index int `json:"index"`
}

// Exam is a saved prova: metadata plus the ordered question references that
// define it. Active=false marks a soft-deleted exam.
type Exam struct {
	ID          string        `json:"id"`
	UserID      string        `json:"userId"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Year        int           `json:"year"`
	Discipline  string        `json:"discipline"`
	Questions   []QuestionRef `json:"questions"`
	Active      bool          `json:"active"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}
