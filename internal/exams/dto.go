package exams

import (
	"time"

	"github.com/matheuss-dsr/dedicandos/internal/questions"
	"github.com/matheuss-dsr/dedicandos/internal/render"
)

type generateRequest struct {
	Year       int    `json:"year"`
	Discipline string `json:"discipline"`
	Quantity   int    `json:"quantity"`
}

type generateResponse struct {
	Requested int                  `json:"requested"`
	Found     int                  `json:"found"`
	Shortfall bool                 `json:"shortfall"`
	Questions []questions.Question `json:"questions"`
}

type exportRequest struct {
	Title     string               `json:"title"`
	Format    string               `json:"format"`
	Student   *render.StudentInfo  `json:"student,omitempty"`
	Questions []questions.Question `json:"questions"`
}

type saveRequest struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Year        int           `json:"year"`
	Discipline  string        `json:"discipline"`
	Questions   []QuestionRef `json:"questions"`
}

func (r saveRequest) toInput() SaveInput {
	return SaveInput{
		Title:       r.Title,
		Description: r.Description,
		Year:        r.Year,
		Discipline:  r.Discipline,
		Questions:   r.Questions,
	}
}

// ExamResponse is the exam shape returned by the API.
type ExamResponse struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Year        int           `json:"year"`
	Discipline  string        `json:"discipline"`
	Questions   []QuestionRef `json:"questions,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// ExamDetailResponse augments the exam with rebuilt question bodies.
type ExamDetailResponse struct {
	ExamResponse
	Loaded []questions.Question `json:"loadedQuestions"`
}

func toExamResponse(e Exam) ExamResponse {
	return ExamResponse{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Year:        e.Year,
		Discipline:  e.Discipline,
		Questions:   e.Questions,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}
