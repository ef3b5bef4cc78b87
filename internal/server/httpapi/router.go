package httpapi

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/matchpoint-app/matchpoint/internal/logging"
	"github.com/matchpoint-app/matchpoint/internal/server/config"
	"github.com/matchpoint-app/matchpoint/internal/server/services"
)

// Router binds the application services to the gin engine.
type Router struct {
	config       *config.Config
	logger       logging.Logger
	users        *services.UserService
	profiles     *services.ProfileService
	photos       *services.PhotoService
	locations    *services.LocationService
	hub          *Hub
	loginLimiter *loginRateLimiter
}

func NewRouter(
	cfg *config.Config,
	logger logging.Logger,
	users *services.UserService,
	profiles *services.ProfileService,
	photos *services.PhotoService,
	locations *services.LocationService,
	hub *Hub,
) *Router {
	return &Router{
		config:       cfg,
		logger:       logger,
		users:        users,
		profiles:     profiles,
		photos:       photos,
		locations:    locations,
		hub:          hub,
		loginLimiter: newLoginRateLimiter(cfg.LoginRatePerMinute),
	}
}

// Engine builds the gin engine with all routes mounted.
func (rt *Router) Engine() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, CSRFHeaderName)
	corsConfig.AllowCredentials = false
	engine.Use(cors.New(corsConfig))

	api := engine.Group("/api")
	{
		authGroup := api.Group("/auth")
		authGroup.POST("/register", rt.handleRegister)
		authGroup.POST("/login", rt.loginRateLimit(), rt.handleLogin)
		authGroup.POST("/logout", rt.handleLogout)
		authGroup.GET("/me", rt.handleMe)
		authGroup.GET("/csrf", rt.sessionRequired(), rt.handleCSRF)

		profileGroup := api.Group("/profile", rt.sessionRequired())
		profileGroup.PUT("/basic", rt.csrfRequired(), rt.handleUpdateBasic)
		profileGroup.PUT("/birth-data", rt.csrfRequired(), rt.handleUpdateBirthData)
		profileGroup.POST("/photo-upload-url", rt.csrfRequired(), rt.handlePhotoUploadURL)
		profileGroup.GET("/photo-url", rt.handlePhotoURL)

		api.GET("/locations/search", rt.handleLocationSearch)
	}

	engine.GET("/ws/events", rt.handleEvents)

	return engine
}
