package backend

import (
	"context"
	"net/http"

	"github.com/carenet/portal/internal/core/domain"
)

func (c *Client) Careseekers(ctx context.Context) ([]domain.CareseekerAccount, error) {
	var out []accountDTO
	if err := c.do(ctx, call{op: "careseekers", method: http.MethodGet, path: "/api/careseekers/profile", out: &out}); err != nil {
		return nil, err
	}
	rows := make([]domain.CareseekerAccount, 0, len(out))
	for _, d := range out {
		rows = append(rows, d.account())
	}
	return rows, nil
}

func (c *Client) SetCareseekerStatus(ctx context.Context, id string, status domain.AccountStatus) error {
	return c.do(ctx, call{
		op:     "careseeker_status",
		method: http.MethodPut,
		path:   "/api/admin/careseekers/" + id + "/status",
		body:   map[string]string{"status": string(status)},
	})
}

func (c *Client) AdminFeedback(ctx context.Context) ([]domain.Feedback, error) {
	var out []feedbackDTO
	if err := c.do(ctx, call{op: "admin_feedback", method: http.MethodGet, path: "/api/admin/feedback", out: &out}); err != nil {
		return nil, err
	}
	return feedbackList(out), nil
}

// FeedbackSummary returns nil when the backend answers with an empty body.
func (c *Client) FeedbackSummary(ctx context.Context) (*domain.FeedbackSummary, error) {
	var out *summaryDTO
	if err := c.do(ctx, call{op: "admin_feedback_summary", method: http.MethodGet, path: "/api/admin/feedback/summary", out: &out}); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, nil
	}
	s := out.summary()
	return &s, nil
}

func (c *Client) DeleteFeedback(ctx context.Context, id string) error {
	return c.do(ctx, call{op: "admin_feedback_delete", method: http.MethodDelete, path: "/api/admin/feedback/" + id})
}
