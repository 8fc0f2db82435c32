package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/domiquerendona/domiq-backend/api/controllers"
	"github.com/domiquerendona/domiq-backend/api/middleware"
	"github.com/domiquerendona/domiq-backend/internal/admins"
	"github.com/domiquerendona/domiq-backend/internal/allies"
	"github.com/domiquerendona/domiq-backend/internal/auth"
	"github.com/domiquerendona/domiq-backend/internal/balances"
	"github.com/domiquerendona/domiq-backend/internal/couriers"
	"github.com/domiquerendona/domiq-backend/internal/dispatch"
	"github.com/domiquerendona/domiq-backend/internal/memberships"
	"github.com/domiquerendona/domiq-backend/internal/notifications"
	"github.com/domiquerendona/domiq-backend/internal/orders"
	"github.com/domiquerendona/domiq-backend/internal/recharges"
	"github.com/domiquerendona/domiq-backend/pkg/auth/session"
	"github.com/domiquerendona/domiq-backend/pkg/config"
	"github.com/domiquerendona/domiq-backend/pkg/enums"
	"github.com/domiquerendona/domiq-backend/pkg/logger"
	"github.com/domiquerendona/domiq-backend/pkg/redis"
)

// RouterParams bundles everything the HTTP surface depends on.
type RouterParams struct {
	Cfg            *config.Config
	Logger         *logger.Logger
	DBPinger       controllers.Pinger
	Redis          *redis.Client
	SessionChecker session.AccessSessionChecker

	AuthService     auth.Service
	RegisterService auth.RegisterService
	Couriers        couriers.Service
	Allies          allies.Service
	Teams           admins.Service
	Memberships     memberships.Service
	Links           controllers.LinkFinder
	Orders          orders.Service
	Dispatch        dispatch.Service
	Recharges       recharges.Service
	Balances        balances.Service
	Notifications   notifications.Service
}

// NewRouter wires the full route tree: health probes, the public auth
// surface, and the role-scoped API groups behind bearer auth.
func NewRouter(p RouterParams) http.Handler {
	cfg, logg := p.Cfg, p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.CORS(),
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
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

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, p.DBPinger, p.Redis, logg))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.Post("/validate", controllers.PublicValidate(logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).Post("/login", controllers.AuthLogin(p.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(p.AuthService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthRateLimit(registerPolicy, p.Redis, logg))
			r.Post("/register/courier", controllers.RegisterCourier(p.RegisterService, p.AuthService, logg))
			r.Post("/register/ally", controllers.RegisterAlly(p.RegisterService, p.AuthService, logg))
			r.Post("/register/team", controllers.RegisterTeam(p.RegisterService, p.AuthService, logg))
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.SessionChecker, logg))
		r.Get("/ping", controllers.PrivatePing())

		r.Route("/v1/couriers", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.UserRoleCourier), middleware.RequireProfile(logg))
			r.Get("/me", controllers.CourierMe(p.Couriers, logg))
			r.Post("/me/online", controllers.CourierSetOnline(p.Couriers, logg))
			r.Post("/me/cash", controllers.CourierDeclareCash(p.Couriers, logg))
			r.Put("/me/residence", controllers.CourierUpdateResidence(p.Couriers, logg))
			r.Post("/me/location", controllers.CourierReportLocation(p.Couriers, logg))

			r.Post("/links", controllers.MembershipRequestCourierLink(p.Memberships, logg))
			r.Get("/links", controllers.MembershipMyCourierTeams(p.Memberships, logg))

			r.Get("/orders", controllers.OrderListMine(p.Orders, logg))
			r.Route("/orders/{orderID}", func(r chi.Router) {
				r.Post("/accept", controllers.DispatchAccept(p.Dispatch, logg))
				r.Post("/reject", controllers.DispatchReject(p.Dispatch, logg))
				r.Post("/release", controllers.DispatchRelease(p.Dispatch, logg))
				r.Post("/pickup", controllers.DispatchPickup(p.Dispatch, logg))
				r.Post("/delivered", controllers.DispatchDelivered(p.Dispatch, logg))
			})
		})

		r.Route("/v1/allies", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.UserRoleAlly), middleware.RequireProfile(logg))
			r.Get("/me", controllers.AllyMe(p.Allies, logg))

			r.Route("/locations", func(r chi.Router) {
				r.Get("/", controllers.AllyListLocations(p.Allies, logg))
				r.Post("/", controllers.AllyAddLocation(p.Allies, logg))
				r.Post("/{locationID}/default", controllers.AllySetDefaultLocation(p.Allies, logg))
				r.Delete("/{locationID}", controllers.AllyRemoveLocation(p.Allies, logg))
			})

			r.Route("/blocks", func(r chi.Router) {
				r.Get("/", controllers.AllyListBlockedCouriers(p.Allies, logg))
				r.Post("/{courierID}", controllers.AllyBlockCourier(p.Allies, logg))
				r.Delete("/{courierID}", controllers.AllyUnblockCourier(p.Allies, logg))
			})

			r.Post("/links", controllers.MembershipRequestAllyLink(p.Memberships, logg))
			r.Get("/links", controllers.MembershipMyAllyTeams(p.Memberships, logg))

			r.Post("/orders", controllers.OrderCreate(p.Orders, logg))
			r.Get("/orders", controllers.OrderListMine(p.Orders, logg))
		})

		r.Route("/v1/teams", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin), middleware.RequireProfile(logg))
			r.Get("/me", controllers.TeamMe(p.Teams, logg))
			r.Get("/me/can-operate", controllers.TeamCanOperate(p.Teams, logg))
			r.Post("/{adminID}/decision", controllers.TeamDecide(p.Teams, logg))

			r.Get("/couriers", controllers.MembershipListTeamCouriers(p.Memberships, logg))
			r.Get("/allies", controllers.MembershipListTeamAllies(p.Memberships, logg))
			r.Post("/courier-links/{linkID}/decision", controllers.MembershipDecideCourierLink(p.Memberships, logg))
			r.Post("/ally-links/{linkID}/decision", controllers.MembershipDecideAllyLink(p.Memberships, logg))

			r.Get("/recharges", controllers.RechargeList(p.Recharges, logg))
			r.Post("/recharges/{requestID}/approve", controllers.RechargeApprove(p.Recharges, logg))
			r.Post("/recharges/{requestID}/reject", controllers.RechargeReject(p.Recharges, logg))

			r.Get("/balance", controllers.BalanceTeam(p.Balances, logg))
			r.Get("/balance/ledger", controllers.BalanceTeamLedger(p.Balances, logg))
		})

		r.Route("/v1/orders/{orderID}", func(r chi.Router) {
			r.Get("/", controllers.OrderGet(p.Orders, logg))
			r.Post("/publish", controllers.DispatchPublish(p.Dispatch, p.Orders, logg))
			r.Post("/cancel", controllers.DispatchCancel(p.Dispatch, p.Orders, logg))
			r.Get("/offers", controllers.DispatchQueue(p.Dispatch, p.Orders, logg))
		})

		r.Route("/v1/recharges", func(r chi.Router) {
			r.With(middleware.RequireRole(logg, enums.UserRoleCourier, enums.UserRoleAlly), middleware.RequireProfile(logg)).
				Post("/", controllers.RechargeCreate(p.Recharges, logg))
			r.Get("/{requestID}", controllers.RechargeGet(p.Recharges, logg))
		})

		r.Route("/v1/balances/links/{linkID}", func(r chi.Router) {
			r.Get("/", controllers.BalanceLink(p.Balances, p.Links, logg))
			r.Get("/ledger", controllers.BalanceLinkLedger(p.Balances, p.Links, logg))
		})

		r.Route("/v1/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(p.Notifications, logg))
			r.Post("/{notificationID}/read", controllers.MarkNotificationRead(p.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(p.Notifications, logg))
		})
	})

	return r
}
