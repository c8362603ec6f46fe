package api

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/carenet/portal/docs"
	"github.com/carenet/portal/internal/api/handler"
	"github.com/carenet/portal/internal/api/middleware"
	"github.com/carenet/portal/internal/core/domain"
	"github.com/carenet/portal/internal/core/service"
	"github.com/carenet/portal/internal/infrastructure/http/handlers"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Portal *service.Portal
	// Ready lists what /health/ready probes.
	Ready []handlers.Dependency

	AuthRatePerMinute int
	AuthBurst         int
	MaxUploadBytes    int64

	Logger zerolog.Logger
	// Now is the clock token expiry is checked against; nil means time.Now.
	Now func() time.Time
	// Registerer and Gatherer back the HTTP metrics; nil means the default
	// Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)
	e.Validator = handler.NewValidator(d.Portal.Rules)

	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(requestLogger(d.Logger))
	e.Use(echomiddleware.BodyLimit(bodyLimit(d.MaxUploadBytes)))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "carenet_portal",
		Registerer: d.Registerer,
	}))
	e.Use(middleware.Session(d.Portal.Sessions, d.Now))

	// --- Dependencies ---
	sessions := d.Portal.Sessions
	sessionHandler := handler.NewSessionHandler(sessions)
	careseekerHandler := handler.NewCareseekerHandler(d.Portal)
	caregiverHandler := handler.NewCaregiverHandler(d.Portal)
	feedbackHandler := handler.NewFeedbackHandler(d.Portal)
	adminHandler := handler.NewAdminHandler(d.Portal, d.Logger.With().Str("component", "admin").Logger())
	previewHandler := handler.NewPreviewHandler(d.Portal.Previews)
	throttle := middleware.RateLimit(d.AuthRatePerMinute, d.AuthBurst)

	// --- Session routes ---
	e.GET("/dashboard", sessionHandler.Dashboard)
	e.GET("/session", sessionHandler.Current)
	e.DELETE("/session", sessionHandler.Logout)
	e.POST("/session/login", sessionHandler.Login, throttle)
	e.POST("/session/register", sessionHandler.Register, throttle)
	e.GET(service.PreviewPrefix+":id", previewHandler.Get)

	// --- Careseeker area ---
	cs := e.Group("/careseeker", middleware.RoleGate(sessions, "careseeker", domain.RoleCareSeeker))
	cs.GET("/profile", careseekerHandler.Profile)
	cs.PATCH("/profile", careseekerHandler.Edit)
	cs.DELETE("/profile", careseekerHandler.Close)
	cs.POST("/profile/save", careseekerHandler.Save)
	cs.POST("/profile/reset", careseekerHandler.Reset)
	cs.POST("/profile/avatar", careseekerHandler.Avatar)
	cs.GET("/caregivers", careseekerHandler.Caregivers)
	cs.GET("/caregivers/:id", careseekerHandler.Caregiver)

	// --- Caregiver area ---
	cg := e.Group("/caregiver", middleware.RoleGate(sessions, "caregiver", domain.RoleCaregiver))
	cg.GET("/profile", caregiverHandler.Profile)
	cg.PATCH("/profile", caregiverHandler.Edit)
	cg.DELETE("/profile", caregiverHandler.Close)
	cg.POST("/profile/save", caregiverHandler.Save)
	cg.POST("/profile/reset", caregiverHandler.Reset)
	cg.POST("/profile/avatar", caregiverHandler.Avatar)
	cg.POST("/profile/skills", caregiverHandler.AddSkill)
	cg.DELETE("/profile/skills/:skill", caregiverHandler.RemoveSkill)
	cg.PUT("/profile/languages", caregiverHandler.PutLanguage)
	cg.DELETE("/profile/languages/:lang", caregiverHandler.RemoveLanguage)
	cg.POST("/profile/certifications", caregiverHandler.AddCertification)
	cg.DELETE("/profile/certifications/:index", caregiverHandler.RemoveCertification)
	cg.POST("/profile/work", caregiverHandler.AddWork)
	cg.DELETE("/profile/work/:index", caregiverHandler.RemoveWork)

	// --- Feedback (careseekers and caregivers) ---
	fb := e.Group("/feedback", middleware.RoleGate(sessions, "feedback", domain.RoleCareSeeker, domain.RoleCaregiver))
	fb.GET("/form", feedbackHandler.Form)
	fb.GET("/mine", feedbackHandler.Mine)
	fb.POST("", feedbackHandler.Submit)
	fb.GET("/:id", feedbackHandler.Open)
	fb.PATCH("/:id", feedbackHandler.Edit)
	fb.POST("/:id/save", feedbackHandler.Save)
	fb.POST("/:id/reset", feedbackHandler.Reset)
	fb.DELETE("/:id/view", feedbackHandler.Close)

	// --- Admin area ---
	admin := e.Group("/admin", middleware.RoleGate(sessions, "admin", domain.RoleAdmin))
	admin.GET("/careseekers", adminHandler.Careseekers)
	admin.PUT("/careseekers/:id/status", adminHandler.SetStatus)
	admin.GET("/feedback", adminHandler.Feedback)
	admin.DELETE("/feedback/:id", adminHandler.DeleteFeedback)

	// --- Health probes, metrics and docs (no session required) ---
	healthHandler := handlers.NewHealthHandler()
	readinessHandler := handlers.NewReadinessHandler(d.Ready...)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// bodyLimit leaves room for multipart framing around the largest avatar.
func bodyLimit(maxUpload int64) string {
	if maxUpload <= 0 {
		maxUpload = service.DefaultMaxAvatarBytes
	}
	return fmt.Sprintf("%dK", maxUpload/1024+512)
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			switch {
			case v.Status >= 500:
				ev = log.Error().Err(v.Error)
			case v.Error != nil:
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
