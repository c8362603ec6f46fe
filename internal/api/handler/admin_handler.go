package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/carenet/portal/internal/core/domain"
	"github.com/carenet/portal/internal/core/ports"
	"github.com/carenet/portal/internal/core/service"
)

// AdminHandler serves the admin listings.
type AdminHandler struct {
	portal *service.Portal
	logger zerolog.Logger
}

func NewAdminHandler(portal *service.Portal, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{portal: portal, logger: logger}
}

type statusRequest struct {
	Status domain.AccountStatus `json:"status" validate:"required"`
}

type summaryResponse struct {
	domain.FeedbackSummary
	Percent map[int]float64 `json:"percent"`
}

type feedbackBoardResponse struct {
	Rows    domain.Page[domain.Feedback] `json:"rows"`
	Summary summaryResponse              `json:"summary"`
}

func toSummaryResponse(s domain.FeedbackSummary) summaryResponse {
	pct := make(map[int]float64, 5)
	for star := 1; star <= 5; star++ {
		pct[star] = s.Percent(star)
	}
	return summaryResponse{FeedbackSummary: s, Percent: pct}
}

// Careseekers lists careseeker accounts, ten per page.
//
// @Summary      Careseeker accounts
// @Tags         admin
// @Produce      json
// @Param        q        query     string  false  "Search text"
// @Param        page     query     int     false  "Page, from 1"
// @Param        refresh  query     bool    false  "Refetch from the backend"
// @Success      200      {object}  domain.Page[domain.CareseekerAccount]
// @Failure      403      {object}  map[string]string
// @Router       /admin/careseekers [get]
func (h *AdminHandler) Careseekers(c echo.Context) error {
	board, err := h.portal.Accounts(c.Request().Context(), queryBool(c, "refresh"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, board.List(ports.AccountQuery{
		Query: c.QueryParam("q"),
		Page:  queryInt(c, "page", 1),
	}))
}

// SetStatus activates or deactivates a careseeker account.
//
// @Summary      Change account status
// @Tags         admin
// @Accept       json
// @Param        id    path  string         true  "Careseeker ID"
// @Param        body  body  statusRequest  true  "ACTIVE or DEACTIVATED"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /admin/careseekers/{id}/status [put]
func (h *AdminHandler) SetStatus(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}
	var req statusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	board, err := h.portal.Accounts(c.Request().Context(), false)
	if err != nil {
		return err
	}
	id := c.Param("id")
	if err := board.SetStatus(c.Request().Context(), id, req.Status); err != nil {
		return err
	}
	h.logger.Info().
		Str("actor", actor.Email).
		Str("careseeker_id", id).
		Str("status", string(req.Status)).
		Msg("account status changed")
	return c.NoContent(http.StatusNoContent)
}

// Feedback lists all feedback with the rating summary.
//
// @Summary      Feedback board
// @Tags         admin
// @Produce      json
// @Param        q        query     string  false  "Search text"
// @Param        stars    query     int     false  "Star bucket 1-5, 0 for all"
// @Param        page     query     int     false  "Page, from 1"
// @Param        refresh  query     bool    false  "Refetch from the backend"
// @Success      200      {object}  feedbackBoardResponse
// @Router       /admin/feedback [get]
func (h *AdminHandler) Feedback(c echo.Context) error {
	board, err := h.portal.FeedbackBoard(c.Request().Context(), queryBool(c, "refresh"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, feedbackBoardResponse{
		Rows: board.List(ports.FeedbackQuery{
			Query: c.QueryParam("q"),
			Stars: queryInt(c, "stars", 0),
			Page:  queryInt(c, "page", 1),
		}),
		Summary: toSummaryResponse(board.Summary()),
	})
}

// DeleteFeedback removes a feedback row and returns the adjusted summary.
//
// @Summary      Delete feedback
// @Tags         admin
// @Produce      json
// @Param        id   path      string  true  "Feedback ID"
// @Success      200  {object}  summaryResponse
// @Failure      404  {object}  map[string]string
// @Router       /admin/feedback/{id} [delete]
func (h *AdminHandler) DeleteFeedback(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}
	board, err := h.portal.FeedbackBoard(c.Request().Context(), false)
	if err != nil {
		return err
	}
	id := c.Param("id")
	if err := board.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	h.logger.Info().Str("actor", actor.Email).Str("feedback_id", id).Msg("feedback deleted")
	return c.JSON(http.StatusOK, toSummaryResponse(board.Summary()))
}
