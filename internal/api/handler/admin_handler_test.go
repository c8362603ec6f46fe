package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/carenet/portal/internal/core/domain"
)

func adminBackend() *stubBackend {
	b := newStubBackend(domain.RoleAdmin)
	for i := range 12 {
		b.accounts = append(b.accounts, domain.CareseekerAccount{
			ID:        fmt.Sprintf("cs-%02d", i),
			FirstName: "User",
			LastName:  fmt.Sprintf("N%02d", i),
			Email:     fmt.Sprintf("u%02d@x.io", i),
		})
	}
	b.feedback["f1"] = domain.Feedback{ID: "f1", Quality: 5, Support: 5, CreatedAt: time.Unix(100, 0)}
	b.feedback["f2"] = domain.Feedback{ID: "f2", Quality: 1, Support: 1, CreatedAt: time.Unix(200, 0)}
	b.summary = &domain.FeedbackSummary{
		Total:    2,
		ByStars:  map[int]int{1: 1, 2: 0, 3: 0, 4: 0, 5: 1},
		Averages: map[string]float64{"quality": 3, "support": 3},
	}
	return b
}

func TestAdminHandler_Careseekers(t *testing.T) {
	p := newPortal(t, adminBackend())
	h := NewAdminHandler(p, zerolog.Nop())
	e := newEcho()

	c, rec := jsonContext(e, p, http.MethodGet, "/admin/careseekers?page=2", "")
	if err := h.Careseekers(c); err != nil {
		t.Fatalf("Careseekers: %v", err)
	}
	var page domain.Page[domain.CareseekerAccount]
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if page.Page != 2 || page.Pages != 2 || page.Total != 12 || len(page.Items) != 2 {
		t.Fatalf("unexpected page: %+v", page)
	}

	c, rec = jsonContext(e, p, http.MethodGet, "/admin/careseekers?q=u03@", "")
	_ = h.Careseekers(c)
	_ = json.Unmarshal(rec.Body.Bytes(), &page)
	if page.Total != 1 || page.Items[0].ID != "cs-03" {
		t.Fatalf("filter = %+v", page)
	}
}

func TestAdminHandler_SetStatus(t *testing.T) {
	b := adminBackend()
	p := newPortal(t, b)
	h := NewAdminHandler(p, zerolog.Nop())
	e := newEcho()

	c, rec := jsonContext(e, p, http.MethodPut, "/admin/careseekers/cs-01/status", `{"status":"DEACTIVATED"}`)
	c.SetParamNames("id")
	c.SetParamValues("cs-01")
	if err := h.SetStatus(c); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if rec.Code != http.StatusNoContent || b.statuses["cs-01"] != domain.StatusDeactivated {
		t.Fatalf("status not changed: %d %+v", rec.Code, b.statuses)
	}

	c, _ = jsonContext(e, p, http.MethodPut, "/admin/careseekers/cs-01/status", `{"status":"PAUSED"}`)
	c.SetParamNames("id")
	c.SetParamValues("cs-01")
	var ve *domain.ValidationError
	if err := h.SetStatus(c); !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}

	c, _ = jsonContext(e, nil, http.MethodPut, "/admin/careseekers/cs-01/status", `{"status":"ACTIVE"}`)
	var he *echo.HTTPError
	if err := h.SetStatus(c); !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a user, got %v", err)
	}
}

func TestAdminHandler_FeedbackAndDelete(t *testing.T) {
	b := adminBackend()
	p := newPortal(t, b)
	h := NewAdminHandler(p, zerolog.Nop())
	e := newEcho()

	c, rec := jsonContext(e, p, http.MethodGet, "/admin/feedback?stars=5", "")
	if err := h.Feedback(c); err != nil {
		t.Fatalf("Feedback: %v", err)
	}
	var board feedbackBoardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &board); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if board.Rows.Total != 1 || board.Rows.Items[0].ID != "f1" || board.Summary.Percent[5] != 50 {
		t.Fatalf("unexpected board: %+v", board)
	}

	c, rec = jsonContext(e, p, http.MethodDelete, "/admin/feedback/f1", "")
	c.SetParamNames("id")
	c.SetParamValues("f1")
	if err := h.DeleteFeedback(c); err != nil {
		t.Fatalf("DeleteFeedback: %v", err)
	}
	var summary summaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if summary.Total != 1 || summary.ByStars[5] != 0 || summary.Percent[1] != 100 {
		t.Fatalf("summary not adjusted: %+v", summary)
	}
	if len(b.deleted) != 1 || b.deleted[0] != "f1" {
		t.Fatalf("deleted = %v", b.deleted)
	}
}
