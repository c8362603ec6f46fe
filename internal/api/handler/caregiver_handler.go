package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carenet/portal/internal/core/domain"
	"github.com/carenet/portal/internal/core/service"
)

// CaregiverHandler serves the caregiver profile page.
type CaregiverHandler struct {
	portal *service.Portal
}

func NewCaregiverHandler(portal *service.Portal) *CaregiverHandler {
	return &CaregiverHandler{portal: portal}
}

type caregiverPatch struct {
	Username      *string `json:"username"`
	Tagline       *string `json:"tagline"`
	About         *string `json:"about"`
	ServiceRadius *string `json:"serviceRadius"`
	Years         *string `json:"years"`
}

type skillRequest struct {
	Skill string `json:"skill" validate:"required"`
}

func (h *CaregiverHandler) view(c echo.Context) (*service.CaregiverView, error) {
	return h.portal.CaregiverProfile(c.Request().Context())
}

// edit runs fn against the open view and answers with its snapshot.
func (h *CaregiverHandler) edit(c echo.Context, fn func(v *service.CaregiverView) error) error {
	v, err := h.view(c)
	if err != nil {
		return err
	}
	if err := fn(v); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v.Snapshot())
}

// Profile opens the profile page.
//
// @Summary      Caregiver profile
// @Tags         caregiver
// @Produce      json
// @Success      200  {object}  service.ProfileSnapshot[domain.CaregiverProfile]
// @Router       /caregiver/profile [get]
func (h *CaregiverHandler) Profile(c echo.Context) error {
	return h.edit(c, func(*service.CaregiverView) error { return nil })
}

// Edit applies scalar field edits.
//
// @Summary      Edit caregiver profile
// @Tags         caregiver
// @Accept       json
// @Produce      json
// @Param        body  body      caregiverPatch  true  "Field edits"
// @Success      200   {object}  service.ProfileSnapshot[domain.CaregiverProfile]
// @Failure      422   {object}  map[string]string
// @Router       /caregiver/profile [patch]
func (h *CaregiverHandler) Edit(c echo.Context) error {
	var req caregiverPatch
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return h.edit(c, func(v *service.CaregiverView) error {
		return v.Apply(service.CaregiverEdit{
			Username:      req.Username,
			Tagline:       req.Tagline,
			About:         req.About,
			ServiceRadius: req.ServiceRadius,
			Years:         req.Years,
		})
	})
}

// AddSkill adds a skill; blanks and duplicates are ignored.
//
// @Summary      Add skill
// @Tags         caregiver
// @Accept       json
// @Param        body  body      skillRequest  true  "Skill"
// @Success      200   {object}  service.ProfileSnapshot[domain.CaregiverProfile]
// @Router       /caregiver/profile/skills [post]
func (h *CaregiverHandler) AddSkill(c echo.Context) error {
	var req skillRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	return h.edit(c, func(v *service.CaregiverView) error { return v.AddSkill(req.Skill) })
}

// RemoveSkill drops a skill.
//
// @Summary      Remove skill
// @Tags         caregiver
// @Param        skill  path      string  true  "Skill"
// @Success      200    {object}  service.ProfileSnapshot[domain.CaregiverProfile]
// @Router       /caregiver/profile/skills/{skill} [delete]
func (h *CaregiverHandler) RemoveSkill(c echo.Context) error {
	return h.edit(c, func(v *service.CaregiverView) error { return v.RemoveSkill(c.Param("skill")) })
}

// PutLanguage adds a language or changes its level.
//
// @Summary      Set language
// @Tags         caregiver
// @Accept       json
// @Param        body  body      domain.Language  true  "Language and level"
// @Success      200   {object}  service.ProfileSnapshot[domain.CaregiverProfile]
// @Failure      422   {object}  map[string]string
// @Router       /caregiver/profile/languages [put]
func (h *CaregiverHandler) PutLanguage(c echo.Context) error {
	var req domain.Language
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return h.edit(c, func(v *service.CaregiverView) error { return v.PutLanguage(req) })
}

// RemoveLanguage drops a language.
//
// @Summary      Remove language
// @Tags         caregiver
// @Param        lang  path      string  true  "Language"
// @Success      200   {object}  service.ProfileSnapshot[domain.CaregiverProfile]
// @Router       /caregiver/profile/languages/{lang} [delete]
func (h *CaregiverHandler) RemoveLanguage(c echo.Context) error {
	return h.edit(c, func(v *service.CaregiverView) error { return v.RemoveLanguage(c.Param("lang")) })
}

// AddCertification appends a certification.
//
// @Summary      Add certification
// @Tags         caregiver
// @Accept       json
// @Param        body  body      domain.Certification  true  "Certification"
// @Success      200   {object}  service.ProfileSnapshot[domain.CaregiverProfile]
// @Failure      422   {object}  map[string]string
// @Router       /caregiver/profile/certifications [post]
func (h *CaregiverHandler) AddCertification(c echo.Context) error {
	var req domain.Certification
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return h.edit(c, func(v *service.CaregiverView) error { return v.AddCertification(req) })
}

// RemoveCertification drops the certification at index.
//
// @Summary      Remove certification
// @Tags         caregiver
// @Param        index  path      int  true  "Position in the list"
// @Success      200    {object}  service.ProfileSnapshot[domain.CaregiverProfile]
// @Failure      404    {object}  map[string]string
// @Router       /caregiver/profile/certifications/{index} [delete]
func (h *CaregiverHandler) RemoveCertification(c echo.Context) error {
	i, err := pathIndex(c, "index")
	if err != nil {
		return err
	}
	return h.edit(c, func(v *service.CaregiverView) error { return v.RemoveCertification(i) })
}

// AddWork appends a work history entry.
//
// @Summary      Add work entry
// @Tags         caregiver
// @Accept       json
// @Param        body  body      domain.WorkEntry  true  "Work entry"
// @Success      200   {object}  service.ProfileSnapshot[domain.CaregiverProfile]
// @Failure      422   {object}  map[string]string
// @Router       /caregiver/profile/work [post]
func (h *CaregiverHandler) AddWork(c echo.Context) error {
	var req domain.WorkEntry
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return h.edit(c, func(v *service.CaregiverView) error { return v.AddWork(req) })
}

// RemoveWork drops the work entry at index.
//
// @Summary      Remove work entry
// @Tags         caregiver
// @Param        index  path      int  true  "Position in the list"
// @Success      200    {object}  service.ProfileSnapshot[domain.CaregiverProfile]
// @Failure      404    {object}  map[string]string
// @Router       /caregiver/profile/work/{index} [delete]
func (h *CaregiverHandler) RemoveWork(c echo.Context) error {
	i, err := pathIndex(c, "index")
	if err != nil {
		return err
	}
	return h.edit(c, func(v *service.CaregiverView) error { return v.RemoveWork(i) })
}

// Save submits the working copy.
//
// @Summary      Save caregiver profile
// @Tags         caregiver
// @Success      200  {object}  service.ProfileSnapshot[domain.CaregiverProfile]
// @Failure      409  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /caregiver/profile/save [post]
func (h *CaregiverHandler) Save(c echo.Context) error {
	return h.edit(c, func(v *service.CaregiverView) error { return v.Save(c.Request().Context()) })
}

// Reset discards unsaved edits.
//
// @Summary      Revert caregiver profile
// @Tags         caregiver
// @Success      200  {object}  service.ProfileSnapshot[domain.CaregiverProfile]
// @Router       /caregiver/profile/reset [post]
func (h *CaregiverHandler) Reset(c echo.Context) error {
	return h.edit(c, func(v *service.CaregiverView) error { return v.Reset() })
}

// Avatar uploads a new avatar.
//
// @Summary      Upload caregiver avatar
// @Tags         caregiver
// @Accept       multipart/form-data
// @Param        file  formData  file  true  "Image, at most 5 MB"
// @Success      200   {object}  avatarResponse
// @Failure      400   {object}  map[string]string
// @Router       /caregiver/profile/avatar [post]
func (h *CaregiverHandler) Avatar(c echo.Context) error {
	file, done, err := formFile(c)
	if err != nil {
		return err
	}
	defer done()
	v, err := h.view(c)
	if err != nil {
		return err
	}
	url, err := h.portal.Avatars.Upload(c.Request().Context(), v, file)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, avatarResponse{URL: url, Profile: v.Snapshot()})
}

// Close leaves the profile page.
//
// @Summary      Close caregiver profile
// @Tags         caregiver
// @Success      204
// @Router       /caregiver/profile [delete]
func (h *CaregiverHandler) Close(c echo.Context) error {
	return closeView(c, h.portal, service.ViewCaregiverProfile)
}
