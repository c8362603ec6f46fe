package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carenet/portal/internal/core/domain"
	"github.com/carenet/portal/internal/core/service"
)

// CareseekerHandler serves the careseeker area: the profile page and the
// caregiver directory.
type CareseekerHandler struct {
	portal *service.Portal
}

func NewCareseekerHandler(portal *service.Portal) *CareseekerHandler {
	return &CareseekerHandler{portal: portal}
}

// careseekerPatch carries field edits. Nil fields are left alone; one
// rejected edit rejects the whole patch.
type careseekerPatch struct {
	FirstName       *string  `json:"firstName"`
	LastName        *string  `json:"lastName"`
	Phone           *string  `json:"phone"`
	Location        *string  `json:"location"`
	Gender          *string  `json:"gender"`
	DOB             *string  `json:"dob"`
	ToggleCareTypes []string `json:"toggleCareTypes"`
}

type avatarResponse struct {
	URL     string `json:"url"`
	Profile any    `json:"profile"`
}

func (h *CareseekerHandler) view(c echo.Context) (*service.CareseekerView, error) {
	return h.portal.CareseekerProfile(c.Request().Context())
}

// Profile opens the profile page.
//
// @Summary      Careseeker profile
// @Tags         careseeker
// @Produce      json
// @Success      200  {object}  service.ProfileSnapshot[domain.CareseekerProfile]
// @Failure      401  {object}  map[string]string
// @Router       /careseeker/profile [get]
func (h *CareseekerHandler) Profile(c echo.Context) error {
	v, err := h.view(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v.Snapshot())
}

// Edit applies field edits to the working copy.
//
// @Summary      Edit careseeker profile
// @Tags         careseeker
// @Accept       json
// @Produce      json
// @Param        body  body      careseekerPatch  true  "Field edits"
// @Success      200   {object}  service.ProfileSnapshot[domain.CareseekerProfile]
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /careseeker/profile [patch]
func (h *CareseekerHandler) Edit(c echo.Context) error {
	var req careseekerPatch
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	v, err := h.view(c)
	if err != nil {
		return err
	}

	if err := v.Apply(service.CareseekerEdit{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Phone:           req.Phone,
		Location:        req.Location,
		Gender:          req.Gender,
		DOB:             req.DOB,
		ToggleCareTypes: req.ToggleCareTypes,
	}); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v.Snapshot())
}

// Save submits the working copy.
//
// @Summary      Save careseeker profile
// @Tags         careseeker
// @Produce      json
// @Success      200  {object}  service.ProfileSnapshot[domain.CareseekerProfile]
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /careseeker/profile/save [post]
func (h *CareseekerHandler) Save(c echo.Context) error {
	v, err := h.view(c)
	if err != nil {
		return err
	}
	if err := v.Save(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v.Snapshot())
}

// Reset discards unsaved edits.
//
// @Summary      Revert careseeker profile
// @Tags         careseeker
// @Produce      json
// @Success      200  {object}  service.ProfileSnapshot[domain.CareseekerProfile]
// @Router       /careseeker/profile/reset [post]
func (h *CareseekerHandler) Reset(c echo.Context) error {
	v, err := h.view(c)
	if err != nil {
		return err
	}
	if err := v.Reset(); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v.Snapshot())
}

// Avatar uploads a new avatar and puts its URL in the working copy.
//
// @Summary      Upload careseeker avatar
// @Tags         careseeker
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Image, at most 5 MB"
// @Success      200   {object}  avatarResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /careseeker/profile/avatar [post]
func (h *CareseekerHandler) Avatar(c echo.Context) error {
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

// Close leaves the profile page; an in-flight load or save is discarded.
//
// @Summary      Close careseeker profile
// @Tags         careseeker
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /careseeker/profile [delete]
func (h *CareseekerHandler) Close(c echo.Context) error {
	return closeView(c, h.portal, service.ViewCareseekerProfile)
}

// Caregivers lists the public caregiver directory, filtered by q.
//
// @Summary      Caregiver directory
// @Tags         careseeker
// @Produce      json
// @Param        q    query     string  false  "Search text"
// @Success      200  {array}   domain.PublicCaregiver
// @Router       /careseeker/caregivers [get]
func (h *CareseekerHandler) Caregivers(c echo.Context) error {
	list, err := h.portal.Directory.Caregivers(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return err
	}
	if list == nil {
		list = []domain.PublicCaregiver{}
	}
	return c.JSON(http.StatusOK, list)
}

// Caregiver returns one public caregiver profile.
//
// @Summary      Caregiver details
// @Tags         careseeker
// @Produce      json
// @Param        id   path      string  true  "Caregiver ID"
// @Success      200  {object}  domain.PublicCaregiver
// @Failure      404  {object}  map[string]string
// @Router       /careseeker/caregivers/{id} [get]
func (h *CareseekerHandler) Caregiver(c echo.Context) error {
	cg, err := h.portal.Directory.Caregiver(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cg)
}

func closeView(c echo.Context, portal *service.Portal, key string) error {
	if !portal.Views.CloseView(key) {
		return domain.ErrViewNotOpen
	}
	return c.NoContent(http.StatusNoContent)
}
