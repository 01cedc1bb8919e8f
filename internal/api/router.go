package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/nekogravitycat/class-booking-backend/internal/auth"
	bookingHttp "github.com/nekogravitycat/class-booking-backend/internal/booking/http"
	classHttp "github.com/nekogravitycat/class-booking-backend/internal/classinstance/http"
	templateHttp "github.com/nekogravitycat/class-booking-backend/internal/classtemplate/http"
	creditHttp "github.com/nekogravitycat/class-booking-backend/internal/credit/http"
	mediaHttp "github.com/nekogravitycat/class-booking-backend/internal/media/http"
	orgHttp "github.com/nekogravitycat/class-booking-backend/internal/organization/http"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/logger"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/request"
	tournamentHttp "github.com/nekogravitycat/class-booking-backend/internal/tournament/http"
	"github.com/nekogravitycat/class-booking-backend/internal/user"
	userHttp "github.com/nekogravitycat/class-booking-backend/internal/user/http"
	venueHttp "github.com/nekogravitycat/class-booking-backend/internal/venue/http"
)

// Handlers groups the HTTP handlers of every module.
type Handlers struct {
	User         *userHttp.UserHandler
	Organization *orgHttp.OrganizationHandler
	Venue        *venueHttp.VenueHandler
	Media        *mediaHttp.Handler
	Template     *templateHttp.TemplateHandler
	Class        *classHttp.ClassHandler
	Booking      *bookingHttp.Handler
	Credit       *creditHttp.CreditHandler
	Tournament   *tournamentHttp.TournamentHandler
}

// Config holds what the router needs besides the module handlers.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	Logger       *slog.Logger
	UserService  user.Service
	JWTManager   *auth.JWTManager
	Handlers     Handlers
}

// NewRouter assembles middleware (request logging, recovery, CORS, auth) and
// registers the routes of every module under /v1.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := request.RegisterValidations(v); err != nil {
			cfg.Logger.Error("register validations failed", logger.Err(err))
		}
	}

	r := gin.New()
	r.Use(RequestLogger(cfg.Logger), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction {
		corsConfig.AllowOrigins = splitOrigins(cfg.ProdOrigins)
	} else {
		corsConfig.AllowOrigins = []string{
			"http://localhost:8081", // Swagger
			"http://localhost:3000",
		}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", requestIDHeader}
	corsConfig.ExposeHeaders = []string{requestIDHeader}
	if len(corsConfig.AllowOrigins) > 0 {
		r.Use(cors.New(corsConfig))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	sysAdminMiddleware := RequireSystemAdmin(cfg.UserService)

	h := cfg.Handlers
	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, h.User, authMiddleware, sysAdminMiddleware)
		orgHttp.RegisterRoutes(v1, h.Organization, authMiddleware, sysAdminMiddleware)
		venueHttp.RegisterRoutes(v1, h.Venue, authMiddleware)
		mediaHttp.RegisterRoutes(v1, h.Media, authMiddleware)
		templateHttp.RegisterRoutes(v1, h.Template, authMiddleware)
		classHttp.RegisterRoutes(v1, h.Class, authMiddleware)
		bookingHttp.RegisterRoutes(v1, h.Booking, authMiddleware)
		creditHttp.RegisterRoutes(v1, h.Credit, authMiddleware)
		tournamentHttp.RegisterRoutes(v1, h.Tournament, authMiddleware)
	}

	return r
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
