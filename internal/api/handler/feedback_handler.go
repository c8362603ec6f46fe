package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carenet/portal/internal/core/domain"
	"github.com/carenet/portal/internal/core/service"
)

// FeedbackHandler serves the caller's own feedback: the submit form, the
// history list and the edit view of a single row.
type FeedbackHandler struct {
	portal *service.Portal
}

func NewFeedbackHandler(portal *service.Portal) *FeedbackHandler {
	return &FeedbackHandler{portal: portal}
}

type feedbackPatch struct {
	Quality       *int     `json:"quality"`
	Support       *int     `json:"support"`
	Notes         *string  `json:"notes"`
	Role          *string  `json:"role"`
	ToggleUseful  []string `json:"toggleUseful"`
	ToggleMissing []string `json:"toggleMissing"`
}

type feedbackFormResponse struct {
	Form            domain.Feedback `json:"form"`
	FeaturesUseful  []string        `json:"featuresUseful"`
	FeaturesMissing []string        `json:"featuresMissing"`
}

// Form returns a new feedback form prefilled from the session.
//
// @Summary      Feedback form
// @Tags         feedback
// @Produce      json
// @Success      200  {object}  feedbackFormResponse
// @Router       /feedback/form [get]
func (h *FeedbackHandler) Form(c echo.Context) error {
	f, err := h.portal.Feedback.Form()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, feedbackFormResponse{
		Form:            f,
		FeaturesUseful:  domain.FeaturesUseful,
		FeaturesMissing: domain.FeaturesMissing,
	})
}

// Submit sends a new feedback row.
//
// @Summary      Submit feedback
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Param        body  body      domain.Feedback  true  "Feedback"
// @Success      201   {object}  domain.Feedback
// @Failure      422   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /feedback [post]
func (h *FeedbackHandler) Submit(c echo.Context) error {
	var req domain.Feedback
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	created, err := h.portal.Feedback.Submit(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

// Mine lists the caller's feedback, newest first.
//
// @Summary      My feedback
// @Tags         feedback
// @Produce      json
// @Success      200  {array}  domain.Feedback
// @Router       /feedback/mine [get]
func (h *FeedbackHandler) Mine(c echo.Context) error {
	rows, err := h.portal.Feedback.Mine(c.Request().Context())
	if err != nil {
		return err
	}
	if rows == nil {
		rows = []domain.Feedback{}
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *FeedbackHandler) edit(c echo.Context, fn func(v *service.FeedbackView) error) error {
	v, err := h.portal.EditFeedback(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if err := fn(v); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v.Snapshot())
}

// Open opens the edit view of one feedback row.
//
// @Summary      Edit feedback
// @Tags         feedback
// @Produce      json
// @Param        id   path      string  true  "Feedback ID"
// @Success      200  {object}  service.EntitySnapshot[domain.Feedback]
// @Router       /feedback/{id} [get]
func (h *FeedbackHandler) Open(c echo.Context) error {
	return h.edit(c, func(*service.FeedbackView) error { return nil })
}

// Edit applies edits to an open feedback row.
//
// @Summary      Change feedback
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Param        id    path      string         true  "Feedback ID"
// @Param        body  body      feedbackPatch  true  "Edits"
// @Success      200   {object}  service.EntitySnapshot[domain.Feedback]
// @Failure      422   {object}  map[string]string
// @Router       /feedback/{id} [patch]
func (h *FeedbackHandler) Edit(c echo.Context) error {
	var req feedbackPatch
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return h.edit(c, func(v *service.FeedbackView) error {
		return v.Apply(service.FeedbackEdit{
			Quality:       req.Quality,
			Support:       req.Support,
			Notes:         req.Notes,
			Role:          req.Role,
			ToggleUseful:  req.ToggleUseful,
			ToggleMissing: req.ToggleMissing,
		})
	})
}

// Save submits an edited feedback row.
//
// @Summary      Save feedback
// @Tags         feedback
// @Param        id   path      string  true  "Feedback ID"
// @Success      200  {object}  service.EntitySnapshot[domain.Feedback]
// @Failure      409  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /feedback/{id}/save [post]
func (h *FeedbackHandler) Save(c echo.Context) error {
	return h.edit(c, func(v *service.FeedbackView) error { return v.Save(c.Request().Context()) })
}

// Reset discards edits to a feedback row.
//
// @Summary      Revert feedback
// @Tags         feedback
// @Param        id   path      string  true  "Feedback ID"
// @Success      200  {object}  service.EntitySnapshot[domain.Feedback]
// @Router       /feedback/{id}/reset [post]
func (h *FeedbackHandler) Reset(c echo.Context) error {
	return h.edit(c, func(v *service.FeedbackView) error { return v.Reset() })
}

// Close closes the edit view of a feedback row.
//
// @Summary      Close feedback
// @Tags         feedback
// @Param        id   path  string  true  "Feedback ID"
// @Success      204
// @Router       /feedback/{id}/view [delete]
func (h *FeedbackHandler) Close(c echo.Context) error {
	return closeView(c, h.portal, service.FeedbackViewKey(c.Param("id")))
}
