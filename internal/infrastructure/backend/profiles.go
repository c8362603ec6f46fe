package backend

import (
	"context"
	"net/http"

	"github.com/carenet/portal/internal/core/domain"
)

func (c *Client) CareseekerProfile(ctx context.Context) (*domain.CareseekerProfile, error) {
	var out careseekerDTO
	if err := c.do(ctx, call{op: "careseeker_profile_get", method: http.MethodGet, path: "/api/careseeker/profile/me", out: &out}); err != nil {
		return nil, err
	}
	p := out.profile()
	return &p, nil
}

func (c *Client) SaveCareseekerProfile(ctx context.Context, p domain.CareseekerProfile) error {
	return c.do(ctx, call{
		op:     "careseeker_profile_put",
		method: http.MethodPut,
		path:   "/api/careseeker/profile/me",
		body:   newCareseekerPayload(p),
	})
}

func (c *Client) CaregiverProfile(ctx context.Context) (*domain.CaregiverProfile, error) {
	var out caregiverDTO
	if err := c.do(ctx, call{op: "caregiver_profile_get", method: http.MethodGet, path: "/api/caregiver/profile/me", out: &out}); err != nil {
		return nil, err
	}
	p := out.profile()
	return &p, nil
}

func (c *Client) SaveCaregiverProfile(ctx context.Context, p domain.CaregiverProfile) error {
	return c.do(ctx, call{
		op:     "caregiver_profile_put",
		method: http.MethodPut,
		path:   "/api/caregiver/profile/me",
		body:   newCaregiverPayload(p),
	})
}

// PublicCaregivers lists the caregiver directory.
func (c *Client) PublicCaregivers(ctx context.Context) ([]domain.PublicCaregiver, error) {
	var out []caregiverDTO
	if err := c.do(ctx, call{op: "public_caregivers", method: http.MethodGet, path: "/api/caregiver/profile/public", out: &out}); err != nil {
		return nil, err
	}
	list := make([]domain.PublicCaregiver, 0, len(out))
	for _, d := range out {
		list = append(list, d.public())
	}
	return list, nil
}

func (c *Client) PublicCaregiver(ctx context.Context, id string) (*domain.PublicCaregiver, error) {
	var out caregiverDTO
	if err := c.do(ctx, call{op: "public_caregiver_get", method: http.MethodGet, path: "/api/caregiver/profile/public/" + id, out: &out}); err != nil {
		return nil, err
	}
	p := out.public()
	if p.ID == "" {
		p.ID = id
	}
	return &p, nil
}
