package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/carenet/portal/internal/core/domain"
	"github.com/carenet/portal/internal/core/service"
)

func seekerBackend() *stubBackend {
	b := newStubBackend(domain.RoleCareSeeker)
	b.careseeker = &domain.CareseekerProfile{
		FirstName: "Ann",
		LastName:  "Lee",
		Email:     "ann@x.io",
		Phone:     "0771234567",
		AvatarURL: "https://cdn.example/ann.png",
		DOB:       "1990-01-01",
		CareTypes: []string{},
	}
	return b
}

func decodeSnapshot(t *testing.T, rec *httptest.ResponseRecorder) service.ProfileSnapshot[domain.CareseekerProfile] {
	t.Helper()
	var snap service.ProfileSnapshot[domain.CareseekerProfile]
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return snap
}

func TestCareseekerHandler_EditAndSave(t *testing.T) {
	b := seekerBackend()
	p := newPortal(t, b)
	h := NewCareseekerHandler(p)
	e := newEcho()

	c, rec := jsonContext(e, p, http.MethodGet, "/careseeker/profile", "")
	if err := h.Profile(c); err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if snap := decodeSnapshot(t, rec); snap.State != service.StateReady || snap.Dirty {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	c, rec = jsonContext(e, p, http.MethodPatch, "/careseeker/profile",
		`{"phone":"(071) 555-0000","toggleCareTypes":["Child Care"]}`)
	if err := h.Edit(c); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	snap := decodeSnapshot(t, rec)
	if !snap.Dirty || snap.Working.Phone != "0715550000" {
		t.Fatalf("edit not applied: %+v", snap.Working)
	}

	c, rec = jsonContext(e, p, http.MethodPost, "/careseeker/profile/save", "")
	if err := h.Save(c); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if snap := decodeSnapshot(t, rec); snap.Dirty || snap.Info != domain.MsgSaved {
		t.Fatalf("unexpected snapshot after save: %+v", snap)
	}
	if len(b.saved) != 1 || len(b.saved[0].CareTypes) != 1 {
		t.Fatalf("saved = %+v", b.saved)
	}
}

func TestCareseekerHandler_EditRejected(t *testing.T) {
	p := newPortal(t, seekerBackend())
	h := NewCareseekerHandler(p)
	e := newEcho()

	c, _ := jsonContext(e, p, http.MethodPatch, "/careseeker/profile", `{"firstName":"Ann2"}`)
	var ve *domain.ValidationError
	if err := h.Edit(c); !errors.As(err, &ve) || ve.Field != "firstName" {
		t.Fatalf("expected firstName error, got %v", err)
	}

	c, _ = jsonContext(e, p, http.MethodPatch, "/careseeker/profile",
		`{"firstName":"Anna","location":"Colombo","gender":"Robot"}`)
	if err := h.Edit(c); !errors.As(err, &ve) || ve.Field != "gender" {
		t.Fatalf("expected gender error, got %v", err)
	}
	v, _ := p.CareseekerProfile(c.Request().Context())
	if w := v.Working(); w.FirstName != "Ann" || w.Location != "" || v.Dirty() {
		t.Fatalf("rejected patch left edits behind: %+v", w)
	}
}

func TestCareseekerHandler_SaveValidation(t *testing.T) {
	b := seekerBackend()
	p := newPortal(t, b)
	h := NewCareseekerHandler(p)
	e := newEcho()

	c, _ := jsonContext(e, p, http.MethodPatch, "/careseeker/profile", `{"phone":"12345","dob":"2999-01-01"}`)
	if err := h.Edit(c); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	c, _ = jsonContext(e, p, http.MethodPost, "/careseeker/profile/save", "")
	var ve *domain.ValidationError
	if err := h.Save(c); !errors.As(err, &ve) || ve.Field != "phone" {
		t.Fatalf("expected phone error first, got %v", err)
	}
	if len(b.saved) != 0 {
		t.Fatal("invalid profile reached the backend")
	}
}

func TestCareseekerHandler_Close(t *testing.T) {
	p := newPortal(t, seekerBackend())
	h := NewCareseekerHandler(p)
	e := newEcho()

	c, _ := jsonContext(e, p, http.MethodGet, "/careseeker/profile", "")
	_ = h.Profile(c)

	c, rec := jsonContext(e, p, http.MethodDelete, "/careseeker/profile", "")
	if err := h.Close(c); err != nil || rec.Code != http.StatusNoContent {
		t.Fatalf("Close: %v %d", err, rec.Code)
	}
	c, _ = jsonContext(e, p, http.MethodDelete, "/careseeker/profile", "")
	if err := h.Close(c); !errors.Is(err, domain.ErrViewNotOpen) {
		t.Fatalf("expected ErrViewNotOpen, got %v", err)
	}
}

func multipartImage(t *testing.T, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="me.png"`)
	hdr.Set("Content-Type", "image/png")
	part, err := w.CreatePart(hdr)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	_, _ = part.Write(data)
	_ = w.Close()
	return &buf, w.FormDataContentType()
}

func TestCareseekerHandler_Avatar(t *testing.T) {
	b := seekerBackend()
	b.uploadURL = "https://cdn.example/new.png"
	p := newPortal(t, b)
	h := NewCareseekerHandler(p)
	e := newEcho()

	body, ct := multipartImage(t, []byte("\x89PNG fake"))
	req := httptest.NewRequest(http.MethodPost, "/careseeker/profile/avatar", body)
	req.Header.Set(echo.HeaderContentType, ct)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Avatar(c); err != nil {
		t.Fatalf("Avatar: %v", err)
	}
	var resp struct {
		URL     string                                             `json:"url"`
		Profile service.ProfileSnapshot[domain.CareseekerProfile] `json:"profile"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.URL != b.uploadURL || resp.Profile.Working.AvatarURL != b.uploadURL || resp.Profile.Uploading {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if string(b.uploaded) != "\x89PNG fake" {
		t.Fatalf("uploaded bytes = %q", b.uploaded)
	}
	if p.Previews.Len() != 0 {
		t.Fatal("preview not revoked")
	}
}

func TestCareseekerHandler_AvatarMissingFile(t *testing.T) {
	p := newPortal(t, seekerBackend())
	h := NewCareseekerHandler(p)
	e := newEcho()

	c, _ := jsonContext(e, p, http.MethodPost, "/careseeker/profile/avatar", "")
	var he *echo.HTTPError
	if err := h.Avatar(c); !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}
