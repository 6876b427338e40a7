package exams

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/matheuss-dsr/dedicandos/internal/assembly"
	"github.com/matheuss-dsr/dedicandos/internal/enem"
	"github.com/matheuss-dsr/dedicandos/internal/render"
	"github.com/matheuss-dsr/dedicandos/internal/shared/server/middleware"
	"github.com/matheuss-dsr/dedicandos/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the exam service and the renderer.
type Handler struct {
	Svc      *Service
	Renderer *render.Renderer
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, renderer *render.Renderer) *Handler {
	return &Handler{Svc: svc, Renderer: renderer}
}

// RegisterRoutes attaches exam routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/exams/generate", h.generate)
	rg.POST("/exams/export", h.export)
	rg.POST("/exams", h.save)
	rg.GET("/exams", h.list)
	rg.GET("/exams/:id", h.get)
	rg.GET("/exams/:id/export", h.exportSaved)
	rg.PUT("/exams/:id", h.update)
	rg.DELETE("/exams/:id", h.remove)
}

func (h *Handler) generate(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid json body", nil)
		return
	}

	discipline, ok := enem.ParseDiscipline(req.Discipline)
	if !ok {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unknown discipline", nil)
		return
	}

	result, err := h.Svc.Generate(c.Request.Context(), userID, assembly.Params{
		Year:       req.Year,
		Discipline: discipline,
		Quantity:   req.Quantity,
	})
	if err != nil {
		var cooldown *CooldownError
		switch {
		case errors.As(err, &cooldown):
			c.Header("Retry-After", strconv.Itoa(int(cooldown.Wait.Seconds())+1))
			respond.Error(c, http.StatusTooManyRequests, "cooldown_active", cooldown.Error(), nil)
		case errors.Is(err, assembly.ErrInvalidYear),
			errors.Is(err, assembly.ErrInvalidQuantity),
			errors.Is(err, assembly.ErrInvalidDiscipline):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, enem.ErrSourceUnavailable):
			respond.Error(c, http.StatusBadGateway, "source_unavailable", "question source unavailable", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to assemble exam", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, generateResponse{
		Requested: result.Requested,
		Found:     len(result.Questions),
		Shortfall: result.Shortfall,
		Questions: result.Questions,
	})
}

func (h *Handler) export(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid json body", nil)
		return
	}

	format, err := render.ParseFormat(req.Format)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "format must be pdf or docx", nil)
		return
	}
	if len(req.Questions) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "at least one question is required", nil)
		return
	}

	job := render.Job{
		Title:     req.Title,
		Student:   req.Student,
		Questions: req.Questions,
	}
	h.stream(c, job, format)
}

func (h *Handler) save(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid json body", nil)
		return
	}

	exam, err := h.Svc.Save(c.Request.Context(), userID, req.toInput())
	if err != nil {
		h.mapError(c, err, "failed to save exam")
		return
	}
	respond.JSON(c, http.StatusCreated, toExamResponse(exam))
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}

	exams, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list exams", nil)
		return
	}

	resp := make([]ExamResponse, 0, len(exams))
	for _, exam := range exams {
		resp = append(resp, toExamResponse(exam))
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	exam, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.mapError(c, err, "failed to fetch exam")
		return
	}

	loaded, err := h.Svc.LoadQuestions(c.Request.Context(), exam)
	if err != nil {
		h.mapError(c, err, "failed to rebuild exam questions")
		return
	}

	respond.JSON(c, http.StatusOK, ExamDetailResponse{
		ExamResponse: toExamResponse(exam),
		Loaded:       loaded,
	})
}

func (h *Handler) exportSaved(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	format, err := render.ParseFormat(c.DefaultQuery("format", "pdf"))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "format must be pdf or docx", nil)
		return
	}

	exam, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.mapError(c, err, "failed to fetch exam")
		return
	}

	loaded, err := h.Svc.LoadQuestions(c.Request.Context(), exam)
	if err != nil {
		h.mapError(c, err, "failed to rebuild exam questions")
		return
	}
	if len(loaded) == 0 {
		respond.Error(c, http.StatusConflict, "exam_empty", "no exportable questions remain in this exam", nil)
		return
	}

	job := render.Job{Title: exam.Title, Questions: loaded}
	if name := c.Query("student"); name != "" {
		job.Student = &render.StudentInfo{
			Name:   name,
			Class:  c.Query("class"),
			School: c.Query("school"),
			Grade:  c.Query("grade"),
		}
	}
	h.stream(c, job, format)
}

func (h *Handler) update(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid json body", nil)
		return
	}

	exam, err := h.Svc.Update(c.Request.Context(), userID, c.Param("id"), req.toInput())
	if err != nil {
		h.mapError(c, err, "failed to update exam")
		return
	}
	respond.JSON(c, http.StatusOK, toExamResponse(exam))
}

func (h *Handler) remove(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	if err := h.Svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.mapError(c, err, "failed to delete exam")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) stream(c *gin.Context, job render.Job, format render.Format) {
	data, err := h.Renderer.Render(c.Request.Context(), job, format)
	if err != nil {
		switch {
		case errors.Is(err, render.ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "render_failed", "failed to render document", nil)
		}
		return
	}

	c.Header("Content-Type", format.ContentType())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "prova."+string(format)))
	c.Data(http.StatusOK, format.ContentType(), data)
}

func (h *Handler) mapError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "exam not found", nil)
	case errors.Is(err, enem.ErrSourceUnavailable):
		respond.Error(c, http.StatusBadGateway, "source_unavailable", "question source unavailable", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
