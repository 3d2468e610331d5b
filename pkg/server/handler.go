package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mikeboe/newsletter-helper/pkg/newsletter"
	"github.com/mikeboe/newsletter-helper/pkg/render"
	"github.com/mikeboe/newsletter-helper/pkg/studio"
)

type Handler struct {
	Studio *studio.Controller
	// MCP and Metrics are mounted when set.
	MCP     http.Handler
	Metrics http.Handler
	// Timeout bounds each model-backed request; zero means no limit.
	Timeout time.Duration
}

func NewHandler(s *studio.Controller) *Handler {
	return &Handler{Studio: s}
}

type researchRequest struct {
	Topic string `json:"topic"`
}

type editRequest struct {
	Instruction string `json:"instruction"`
}

type notesRequest struct {
	Notes string `json:"notes"`
}

type optionsCatalog struct {
	Styles []newsletter.Style `json:"styles"`
	Tones  []newsletter.Tone  `json:"tones"`
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	if h.MCP != nil {
		r.Any("/mcp", gin.WrapH(h.MCP))
	}
	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics))
	}

	api := r.Group("/api")
	{
		api.GET("/state", h.getState)
		api.GET("/options/catalog", h.getCatalog)
		api.PUT("/options", h.putOptions)

		api.POST("/research", h.research)

		api.POST("/newsletter/generate", h.generate)
		api.POST("/newsletter/edit", h.edit)
		api.GET("/newsletter/export", h.export)
		api.GET("/newsletter/preview", h.preview)

		api.GET("/notes", h.getNotes)
		api.PUT("/notes", h.putNotes)
		api.DELETE("/notes", h.clearNotes)
	}
}

func (h *Handler) modelContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.Timeout > 0 {
		return context.WithTimeout(c.Request.Context(), h.Timeout)
	}
	return context.WithCancel(c.Request.Context())
}

// fail maps an error to a status code and a generic message. Details stay in the logs.
func (h *Handler) fail(c *gin.Context, err error) {
	_ = c.Error(err)

	var (
		validationErr *newsletter.ValidationError
		researchErr   *newsletter.ResearchError
		generationErr *newsletter.GenerationError
		editErr       *newsletter.EditError
	)

	status := http.StatusInternalServerError
	msg := newsletter.UserMessage(err)

	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
	case errors.Is(err, studio.ErrBusy):
		status = http.StatusConflict
		msg = "Another request is already in progress."
	case errors.Is(err, studio.ErrNothingToExport):
		status = http.StatusNotFound
		msg = "Generate a newsletter first."
	case errors.As(err, &researchErr), errors.As(err, &generationErr), errors.As(err, &editErr):
		status = http.StatusBadGateway
	}

	c.JSON(status, gin.H{"error": msg})
}

func badBody(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body."})
}

func (h *Handler) getState(c *gin.Context) {
	c.JSON(http.StatusOK, h.Studio.Snapshot())
}

func (h *Handler) getCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, optionsCatalog{Styles: newsletter.Styles, Tones: newsletter.Tones})
}

func (h *Handler) putOptions(c *gin.Context) {
	var req newsletter.Options
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}

	opts, err := h.Studio.SetOptions(req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, opts)
}

func (h *Handler) research(c *gin.Context) {
	var req researchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}

	ctx, cancel := h.modelContext(c)
	defer cancel()

	result, err := h.Studio.Research(ctx, req.Topic)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) generate(c *gin.Context) {
	ctx, cancel := h.modelContext(c)
	defer cancel()

	content, err := h.Studio.Generate(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": content})
}

func (h *Handler) edit(c *gin.Context) {
	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}

	ctx, cancel := h.modelContext(c)
	defer cancel()

	content, err := h.Studio.Edit(ctx, req.Instruction)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": content})
}

func (h *Handler) export(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.Studio.Export(&buf); err != nil {
		h.fail(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+studio.ExportFilename+`"`)
	c.Data(http.StatusOK, studio.ExportContentType, buf.Bytes())
}

func (h *Handler) preview(c *gin.Context) {
	content := h.Studio.Snapshot().Content
	if content == "" {
		h.fail(c, studio.ErrNothingToExport)
		return
	}

	html, err := render.HTML(content)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func (h *Handler) getNotes(c *gin.Context) {
	c.JSON(http.StatusOK, notesRequest{Notes: h.Studio.Snapshot().Notes})
}

func (h *Handler) putNotes(c *gin.Context) {
	var req notesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}

	if err := h.Studio.SetNotes(c.Request.Context(), req.Notes); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *Handler) clearNotes(c *gin.Context) {
	if err := h.Studio.ClearNotes(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
