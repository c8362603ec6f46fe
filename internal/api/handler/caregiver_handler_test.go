package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/carenet/portal/internal/core/domain"
	"github.com/carenet/portal/internal/core/service"
)

func decodeCaregiver(t *testing.T, rec *httptest.ResponseRecorder) service.ProfileSnapshot[domain.CaregiverProfile] {
	t.Helper()
	var snap service.ProfileSnapshot[domain.CaregiverProfile]
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return snap
}

func TestCaregiverHandler_DefaultsWhenMissing(t *testing.T) {
	b := newStubBackend(domain.RoleCaregiver)
	p := newPortal(t, b)
	h := NewCaregiverHandler(p)
	e := newEcho()

	c, rec := jsonContext(e, p, http.MethodGet, "/caregiver/profile", "")
	if err := h.Profile(c); err != nil {
		t.Fatalf("Profile: %v", err)
	}
	snap := decodeCaregiver(t, rec)
	if snap.Working.Email != "ann@x.io" || snap.Working.Tagline == "" || snap.Warning != "" {
		t.Fatalf("unexpected defaults: %+v", snap.EntitySnapshot)
	}
}

func TestCaregiverHandler_EditListsAndSave(t *testing.T) {
	b := newStubBackend(domain.RoleCaregiver)
	b.caregiver = &domain.CaregiverProfile{Email: "ann@x.io", Username: "ann", Tagline: "Hi"}
	p := newPortal(t, b)
	h := NewCaregiverHandler(p)
	e := newEcho()

	c, _ := jsonContext(e, p, http.MethodPatch, "/caregiver/profile", `{"about":"Ten years of night shifts","years":"10"}`)
	if err := h.Edit(c); err != nil {
		t.Fatalf("Edit: %v", err)
	}

	c, _ = jsonContext(e, p, http.MethodPost, "/caregiver/profile/skills", `{"skill":"  Dementia care "}`)
	if err := h.AddSkill(c); err != nil {
		t.Fatalf("AddSkill: %v", err)
	}
	c, _ = jsonContext(e, p, http.MethodPost, "/caregiver/profile/skills", `{"skill":""}`)
	var ve *domain.ValidationError
	if err := h.AddSkill(c); !errors.As(err, &ve) {
		t.Fatalf("expected validation error for a blank skill, got %v", err)
	}

	c, _ = jsonContext(e, p, http.MethodPut, "/caregiver/profile/languages", `{"lang":"Sinhala","level":"Native"}`)
	if err := h.PutLanguage(c); err != nil {
		t.Fatalf("PutLanguage: %v", err)
	}
	c, _ = jsonContext(e, p, http.MethodPut, "/caregiver/profile/languages", `{"lang":"Tamil","level":"Expert"}`)
	if err := h.PutLanguage(c); !errors.As(err, &ve) {
		t.Fatalf("expected validation error for an unknown level, got %v", err)
	}

	c, _ = jsonContext(e, p, http.MethodPost, "/caregiver/profile/certifications", `{"name":"First Aid","issuer":"Red Cross","year":"20x1"}`)
	if err := h.AddCertification(c); !errors.As(err, &ve) || ve.Field != "year" {
		t.Fatalf("expected year error, got %v", err)
	}

	c, _ = jsonContext(e, p, http.MethodDelete, "/caregiver/profile/work/3", "")
	c.SetParamNames("index")
	c.SetParamValues("3")
	if err := h.RemoveWork(c); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	c, rec := jsonContext(e, p, http.MethodPost, "/caregiver/profile/save", "")
	if err := h.Save(c); err != nil {
		t.Fatalf("Save: %v", err)
	}
	snap := decodeCaregiver(t, rec)
	if snap.Dirty || snap.Info != domain.MsgSaved {
		t.Fatalf("unexpected snapshot after save: %+v", snap.EntitySnapshot)
	}
	if len(b.savedCaregiver) != 1 {
		t.Fatalf("saves = %d", len(b.savedCaregiver))
	}
	got := b.savedCaregiver[0]
	if got.Years != "10" || len(got.Skills) != 1 || got.Skills[0] != "Dementia care" || len(got.Languages) != 1 {
		t.Fatalf("saved = %+v", got)
	}
}

func TestCaregiverHandler_CloseTwice(t *testing.T) {
	b := newStubBackend(domain.RoleCaregiver)
	p := newPortal(t, b)
	h := NewCaregiverHandler(p)
	e := newEcho()

	c, _ := jsonContext(e, p, http.MethodGet, "/caregiver/profile", "")
	_ = h.Profile(c)

	c, rec := jsonContext(e, p, http.MethodDelete, "/caregiver/profile", "")
	if err := h.Close(c); err != nil || rec.Code != http.StatusNoContent {
		t.Fatalf("Close: %v %d", err, rec.Code)
	}
	c, _ = jsonContext(e, p, http.MethodDelete, "/caregiver/profile", "")
	if err := h.Close(c); !errors.Is(err, domain.ErrViewNotOpen) {
		t.Fatalf("expected ErrViewNotOpen, got %v", err)
	}
}
