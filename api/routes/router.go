package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/safariconnector/backend/api/controllers"
	"github.com/safariconnector/backend/api/middleware"
	"github.com/safariconnector/backend/internal/auth"
	"github.com/safariconnector/backend/internal/bookings"
	"github.com/safariconnector/backend/internal/disbursements"
	"github.com/safariconnector/backend/internal/enquiries"
	"github.com/safariconnector/backend/internal/notifications"
	"github.com/safariconnector/backend/internal/quotes"
	"github.com/safariconnector/backend/internal/trips"
	"github.com/safariconnector/backend/pkg/auth/session"
	"github.com/safariconnector/backend/pkg/config"
	"github.com/safariconnector/backend/pkg/db"
	"github.com/safariconnector/backend/pkg/enums"
	"github.com/safariconnector/backend/pkg/logger"
	"github.com/safariconnector/backend/pkg/redis"
)

// Services bundles everything the router mounts.
type Services struct {
	Auth          auth.Service
	Register      auth.RegisterService
	Enquiries     enquiries.Service
	Trips         trips.Service
	Quotes        quotes.Service
	Bookings      bookings.Service
	Disbursements disbursements.Service
	Notifications notifications.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	database *db.Client,
	redisClient *redis.Client,
	sessions session.AccessSessionChecker,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)
	enquiryPolicy := middleware.NewAuthRateLimitPolicy(
		"enquiry",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		0,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, database, redisClient, logg))
	})

	r.Route("/api/public/v1", func(r chi.Router) {
		r.Get("/trips", controllers.ListPublishedTrips(svcs.Trips, logg))
		r.Get("/trips/{slug}", controllers.GetTripBySlug(svcs.Trips, logg))
		r.With(middleware.AuthRateLimit(enquiryPolicy, redisClient, logg)).
			Post("/enquiries", controllers.CreateEnquiry(svcs.Enquiries, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(svcs.Register, svcs.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(svcs.Auth, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))
	})

	r.Route("/api/admin/v1/auth", func(r chi.Router) {
		if !cfg.App.IsProd() {
			r.Post("/register", controllers.AdminAuthRegister(svcs.Register, logg))
		}
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AdminAuthLogin(svcs.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(svcs.Notifications, logg))
			r.Post("/{notificationID}/read", controllers.MarkNotificationRead(svcs.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(svcs.Notifications, logg))
		})

		r.Route("/quotes", func(r chi.Router) {
			r.Get("/", controllers.ListTravellerQuotes(svcs.Quotes, logg))
			r.Post("/{quoteID}/decision", controllers.DecideQuote(svcs.Quotes, logg))
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Post("/", controllers.CreateBooking(svcs.Bookings, logg))
			r.Get("/", controllers.ListTravellerBookings(svcs.Bookings, logg))
			r.Get("/{bookingID}", controllers.GetBooking(svcs.Bookings, logg))
			r.Post("/{bookingID}/payment-proof", controllers.SubmitPaymentProof(svcs.Bookings, logg))
			r.Post("/{bookingID}/cancel", controllers.CancelBooking(svcs.Bookings, logg))
		})

		r.Get("/enquiries/{enquiryID}", controllers.GetEnquiry(svcs.Enquiries, logg))

		r.Route("/operator", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.RoleOperator, logg))

			r.Route("/enquiries", func(r chi.Router) {
				r.Get("/", controllers.ListOperatorEnquiries(svcs.Enquiries, logg))
				r.Get("/{enquiryID}", controllers.GetEnquiry(svcs.Enquiries, logg))
				r.Post("/{enquiryID}/close", controllers.CloseEnquiry(svcs.Enquiries, logg))
			})

			r.Post("/quotes", controllers.IssueQuote(svcs.Quotes, logg))

			r.Route("/bookings", func(r chi.Router) {
				r.Get("/", controllers.ListOperatorBookings(svcs.Bookings, logg))
				r.Post("/{bookingID}/confirm", controllers.ConfirmBooking(svcs.Bookings, logg))
			})

			r.Route("/trips", func(r chi.Router) {
				r.Get("/", controllers.ListOperatorTrips(svcs.Trips, logg))
				r.Post("/", controllers.CreateTrip(svcs.Trips, logg))
				r.Patch("/{tripID}", controllers.UpdateTrip(svcs.Trips, logg))
			})

			r.Get("/disbursements", controllers.ListOperatorDisbursements(svcs.Disbursements, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.RequireRole(enums.RoleAdmin, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/bookings", controllers.ListAllBookings(svcs.Bookings, logg))
		r.Post("/payments/{bookingID}/verify", controllers.VerifyPayment(svcs.Bookings, logg))

		r.Route("/disbursements", func(r chi.Router) {
			r.Get("/", controllers.ListDisbursements(svcs.Disbursements, logg))
			r.Post("/", controllers.CreateDisbursement(svcs.Disbursements, logg))
			r.Post("/{disbursementID}/mark-paid", controllers.MarkDisbursementPaid(svcs.Disbursements, logg))
		})
	})

	return r
}
