package app

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/class-booking-backend/internal/api"
	"github.com/nekogravitycat/class-booking-backend/internal/auth"
	"github.com/nekogravitycat/class-booking-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/class-booking-backend/internal/booking/http"
	"github.com/nekogravitycat/class-booking-backend/internal/classinstance"
	classHttp "github.com/nekogravitycat/class-booking-backend/internal/classinstance/http"
	"github.com/nekogravitycat/class-booking-backend/internal/classtemplate"
	templateHttp "github.com/nekogravitycat/class-booking-backend/internal/classtemplate/http"
	"github.com/nekogravitycat/class-booking-backend/internal/credit"
	creditHttp "github.com/nekogravitycat/class-booking-backend/internal/credit/http"
	"github.com/nekogravitycat/class-booking-backend/internal/media"
	mediaHttp "github.com/nekogravitycat/class-booking-backend/internal/media/http"
	"github.com/nekogravitycat/class-booking-backend/internal/organization"
	orgHttp "github.com/nekogravitycat/class-booking-backend/internal/organization/http"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/cache"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/events"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/storage"
	"github.com/nekogravitycat/class-booking-backend/internal/tournament"
	tournamentHttp "github.com/nekogravitycat/class-booking-backend/internal/tournament/http"
	"github.com/nekogravitycat/class-booking-backend/internal/user"
	userHttp "github.com/nekogravitycat/class-booking-backend/internal/user/http"
	"github.com/nekogravitycat/class-booking-backend/internal/venue"
	venueHttp "github.com/nekogravitycat/class-booking-backend/internal/venue/http"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
	JWTSecret    string
	JWTTTL       time.Duration
	BcryptCost   int
	Logger       *slog.Logger

	// Optional infrastructure; nil falls back to a no-op implementation.
	Cache     cache.Cache
	Publisher events.Publisher
	Storage   storage.Storage
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router         *gin.Engine
	JWTManager     *auth.JWTManager
	UserService    user.Service
	BookingService booking.Service
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) (*Container, error) {
	if cfg.Cache == nil {
		cfg.Cache = cache.NewNop()
	}
	if cfg.Publisher == nil {
		cfg.Publisher = events.NewNop()
	}
	if cfg.Storage == nil {
		local, err := storage.NewLocalStorage("./data")
		if err != nil {
			return nil, err
		}
		cfg.Storage = local
	}

	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasher(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	// User Module
	userService := user.NewService(user.NewPgxRepository(cfg.DBPool), passwordHasher)

	// Organization Module
	orgService := organization.NewService(organization.NewPgxRepository(cfg.DBPool), userService)

	// Venue Module
	venueService := venue.NewService(venue.NewPgxRepository(cfg.DBPool), orgService)

	// Media Module
	mediaService := media.NewService(media.NewPgxRepository(cfg.DBPool), cfg.Storage)

	// Class Template Module
	templateService := classtemplate.NewService(classtemplate.NewPgxRepository(cfg.DBPool), orgService, venueService, mediaService)

	// Class Instance Module
	classService := classinstance.NewService(
		classinstance.NewPgxRepository(cfg.DBPool),
		orgService,
		templateService,
		venueService,
		cfg.Cache,
		cfg.Publisher,
	)

	// Credit Module
	creditService := credit.NewService(credit.NewPgxRepository(cfg.DBPool), orgService)

	// Booking Module
	bookingService := booking.NewService(booking.NewPgxRepository(cfg.DBPool), classService, orgService, cfg.Publisher)
	classService.SetBookingCanceller(bookingService)

	// Tournament Module
	tournamentService := tournament.NewService(
		tournament.NewPgxRepository(cfg.DBPool),
		classService,
		bookingService,
		userService,
		cfg.Publisher,
	)

	mediaHandler := mediaHttp.NewHandler(mediaService)

	router := api.NewRouter(api.Config{
		IsProduction: cfg.IsProduction,
		ProdOrigins:  cfg.ProdOrigins,
		Logger:       cfg.Logger,
		UserService:  userService,
		JWTManager:   jwtManager,
		Handlers: api.Handlers{
			User:         userHttp.NewHandler(userService, jwtManager),
			Organization: orgHttp.NewHandler(orgService),
			Venue:        venueHttp.NewHandler(venueService, orgService),
			Media:        mediaHandler,
			Template:     templateHttp.NewHandler(templateService, orgService, mediaHandler),
			Class:        classHttp.NewHandler(classService, templateService, orgService),
			Booking:      bookingHttp.NewHandler(bookingService, classService, orgService),
			Credit:       creditHttp.NewHandler(creditService, orgService),
			Tournament:   tournamentHttp.NewHandler(tournamentService, classService, orgService),
		},
	})

	return &Container{
		Router:         router,
		JWTManager:     jwtManager,
		UserService:    userService,
		BookingService: bookingService,
	}, nil
}
