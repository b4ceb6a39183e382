package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/Studio-Zurich/fix-app-sub000/internal/config"
	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/valueobject"
	"github.com/Studio-Zurich/fix-app-sub000/internal/http/middleware"
	"github.com/Studio-Zurich/fix-app-sub000/internal/interface/http/handler"
)

// loginRateLimit: попыток входа с одного IP за RateLimitPeriod.
const loginRateLimit = 5

func SetupRouter(
	cfg *config.Config,
	wizardHandler *handler.WizardHandler,
	adminHandler *handler.AdminHandler,
	healthHandler *handler.HealthHandler,
	wsHandler *handler.WSHandler,
	auth middleware.Authenticator,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	r.MaxMultipartMemory = (cfg.MaxUploadSizeMB + 1) << 20

	r.GET("/health", healthHandler.Health)
	if cfg.StorageDriver == config.StorageDriverLocal && strings.HasPrefix(cfg.MediaPublicURL, "/") {
		r.StaticFS(cfg.MediaPublicURL, http.Dir(cfg.MediaStoragePath))
	}

	fallback, _ := valueobject.ParseLocale(cfg.DefaultLocale)
	api := r.Group("/api")
	api.Use(middleware.LocaleMiddleware(fallback))

	public := api.Group("/")
	public.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		public.POST("/wizard", wizardHandler.Start)

		session := public.Group("/wizard/:id")
		session.Use(middleware.UUIDValidator("id"))
		{
			session.GET("", wizardHandler.Get)
			session.DELETE("", wizardHandler.Abandon)
			session.PUT("/locale", wizardHandler.SetLocale)

			session.POST("/image", wizardHandler.UploadImage)
			session.DELETE("/image", wizardHandler.ClearImage)

			session.PUT("/location", wizardHandler.SetLocation)
			session.GET("/location/search", wizardHandler.SearchAddress)
			session.GET("/location/reverse", wizardHandler.ReverseGeocode)
			session.POST("/location/from-image", wizardHandler.UseImageLocation)

			session.GET("/incident-types", wizardHandler.ListIncidentTypes)
			session.PUT("/incident-type", wizardHandler.SelectIncidentType)
			session.GET("/incident-subtypes", wizardHandler.ListIncidentSubtypes)
			session.PUT("/incident-subtype", wizardHandler.SelectIncidentSubtype)

			session.PUT("/description", wizardHandler.SetDescription)
			session.PUT("/contact", wizardHandler.SetContact)

			session.POST("/advance", wizardHandler.Advance)
			session.POST("/back", wizardHandler.Back)
			session.POST("/goto/:step", wizardHandler.GoTo)
			session.POST("/submit", wizardHandler.Submit)
		}

		public.GET("/reports/:id/confirmation", middleware.UUIDValidator("id"), wizardHandler.Confirmation)
	}

	admin := api.Group("/admin")
	admin.POST("/login", middleware.RateLimitWithStore(memory.NewStore(), loginRateLimit, cfg.RateLimitPeriod), adminHandler.Login)
	admin.GET("/ws", wsHandler.Handle)

	protected := admin.Group("/")
	protected.Use(middleware.AuthMiddleware(auth))
	{
		protected.GET("/reports", adminHandler.ListReports)
		protected.GET("/reports/:id", middleware.UUIDValidator("id"), adminHandler.GetReport)
		protected.PUT("/reports/:id/status", middleware.UUIDValidator("id"), adminHandler.ChangeStatus)
		protected.GET("/stats", adminHandler.Stats)

		protected.GET("/incident-types", adminHandler.ListIncidentTypes)
		protected.POST("/incident-types", adminHandler.CreateIncidentType)
		protected.PUT("/incident-types/:id", middleware.UUIDValidator("id"), adminHandler.UpdateIncidentType)
		protected.GET("/incident-types/:id/subtypes", middleware.UUIDValidator("id"), adminHandler.ListIncidentSubtypes)
		protected.POST("/incident-subtypes", adminHandler.CreateIncidentSubtype)
		protected.PUT("/incident-subtypes/:id", middleware.UUIDValidator("id"), adminHandler.UpdateIncidentSubtype)
	}

	return r
}
