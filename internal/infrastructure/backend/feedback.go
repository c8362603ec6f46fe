package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/carenet/portal/internal/core/domain"
)

func (c *Client) SubmitFeedback(ctx context.Context, f domain.Feedback) (*domain.Feedback, error) {
	var out feedbackDTO
	err := c.do(ctx, call{
		op:     "feedback_submit",
		method: http.MethodPost,
		path:   "/api/feedback",
		body:   newFeedbackPayload(f),
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	created := out.feedback()
	return &created, nil
}

// MyFeedback lists the rows submitted under email.
func (c *Client) MyFeedback(ctx context.Context, email string) ([]domain.Feedback, error) {
	var out []feedbackDTO
	err := c.do(ctx, call{
		op:     "feedback_mine",
		method: http.MethodGet,
		path:   "/api/feedback/my-feedback",
		query:  url.Values{"email": {email}},
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return feedbackList(out), nil
}

// Feedback fetches one row; the backend only answers when email owns it.
func (c *Client) Feedback(ctx context.Context, id, email string) (*domain.Feedback, error) {
	var out feedbackDTO
	err := c.do(ctx, call{
		op:     "feedback_get",
		method: http.MethodGet,
		path:   "/api/feedback/" + id,
		query:  url.Values{"email": {email}},
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	f := out.feedback()
	return &f, nil
}

func (c *Client) UpdateFeedback(ctx context.Context, id, email string, f domain.Feedback) error {
	return c.do(ctx, call{
		op:     "feedback_put",
		method: http.MethodPut,
		path:   "/api/feedback/" + id,
		query:  url.Values{"email": {email}},
		body:   newFeedbackPayload(f),
	})
}

func feedbackList(in []feedbackDTO) []domain.Feedback {
	out := make([]domain.Feedback, 0, len(in))
	for _, d := range in {
		out = append(out, d.feedback())
	}
	return out
}
