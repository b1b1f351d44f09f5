package app

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/warcamp/platform/internal/auth"
	"github.com/warcamp/platform/internal/guard"
	"github.com/warcamp/platform/internal/handler"
	adminhandler "github.com/warcamp/platform/internal/handler/admin"
	"github.com/warcamp/platform/internal/infra"
	"github.com/warcamp/platform/internal/repository"
	"github.com/warcamp/platform/internal/service"
)

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	DB     repository.DBTX
	Tx     repository.Transactor
	Repos  repository.Set
	Health handler.Pinger
	Files  *infra.FileStore
	JWTMgr *auth.JWTManager
	Config *infra.Config
	Logger *slog.Logger

	// LoginLimiter throttles POST /login and /register per client IP.
	LoginLimiter *guard.RateLimiter
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	cfg := deps.Config
	logger := deps.Logger
	store := service.Store{DB: deps.DB, Tx: deps.Tx, Repos: deps.Repos}

	// Services
	authSvc := service.NewAuthService(store, deps.JWTMgr, guard.NewLockout(deps.Repos.LoginAttempts), logger)
	playerSvc := service.NewPlayerService(store, deps.Files)
	campaignSvc := service.NewCampaignService(store, deps.Files)
	warbandSvc := service.NewWarbandService(store, deps.Files, cfg.RosterReview, logger)
	battleSvc := service.NewBattleService(store, logger)
	storySvc := service.NewStoryService(store)

	// Handlers
	cookie := auth.SessionCookie{Name: cfg.SessionCookie, Secure: cfg.CookieSecure}
	authHandler := handler.NewAuthHandler(authSvc, cookie, deps.JWTMgr.Expiry())
	playerHandler := handler.NewPlayerHandler(playerSvc, cfg.MaxImageBytes)
	campaignHandler := handler.NewCampaignHandler(campaignSvc)
	warbandHandler := handler.NewWarbandHandler(warbandSvc)
	battleHandler := handler.NewBattleHandler(battleSvc)
	storyHandler := handler.NewStoryHandler(storySvc)

	// Admin handlers
	playerAdmin := adminhandler.NewPlayerAdminHandler(playerSvc)
	warbandAdmin := adminhandler.NewWarbandAdminHandler(warbandSvc)
	gameAdmin := adminhandler.NewGameAdminHandler(battleSvc)
	storyAdmin := adminhandler.NewStoryAdminHandler(storySvc)
	campaignAdmin := adminhandler.NewCampaignAdminHandler(campaignSvc, cfg.MaxImageBytes)

	authenticate := auth.Authenticate(deps.JWTMgr, deps.Repos.Players, deps.DB, cfg.SessionCookie)
	requireAdmin := auth.RequireAdmin(deps.Repos.Campaigns, deps.DB)

	// Routes shared by the global and campaign scopes.
	playerRoutes := func(r chi.Router) {
		r.Post("/warband-apply", warbandHandler.Apply)
		r.Route("/warbands", func(r chi.Router) {
			r.Get("/", warbandHandler.List)
			r.Get("/mine", warbandHandler.Mine)
			r.Get("/{id}", warbandHandler.Get)
			r.Delete("/{id}", warbandHandler.Retire)
			r.Get("/{id}/rosters", warbandHandler.Rosters)
			r.Post("/{id}/roster", warbandHandler.ReplaceRoster)
			r.Get("/{id}/stories", storyHandler.List)
			r.Put("/{id}/stories/{gameNumber}", storyHandler.Upsert)
		})
		r.Get("/rosters/{id}/file", warbandHandler.RosterFile)
		r.Route("/battle/plan", func(r chi.Router) {
			r.Get("/", battleHandler.List)
			r.Post("/", battleHandler.Plan)
			r.Get("/{id}", battleHandler.Get)
			r.Delete("/{id}", battleHandler.Cancel)
			r.Patch("/{id}/ready", battleHandler.Ready)
			r.Patch("/{id}/result", battleHandler.Submit)
			r.Patch("/{id}/approve", battleHandler.Approve)
			r.Patch("/{id}/reject", battleHandler.Reject)
		})
	}

	adminRoutes := func(r chi.Router) {
		r.Use(requireAdmin)
		r.Get("/players", playerAdmin.List)
		r.Patch("/players/{id}", playerAdmin.Update)
		r.Delete("/players/{id}", playerAdmin.Remove)
		r.Get("/warbands", warbandAdmin.List)
		r.Patch("/warbands/{id}", warbandAdmin.SetStatus)
		r.Delete("/warbands/{id}", warbandAdmin.Delete)
		r.Get("/games", gameAdmin.List)
		r.Delete("/games/{id}", gameAdmin.Delete)
		r.Get("/stories", storyAdmin.List)
		r.Patch("/stories/{id}", storyAdmin.Update)
		r.Delete("/stories/{id}", storyAdmin.Delete)
	}

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORSWithOrigins(cfg.AllowedOrigins()...))

	// Health (no auth)
	r.Get("/health", handler.HealthHandler(deps.Health))

	// Uploaded files, served with their sniffed content type
	r.Handle(deps.Files.URLPrefix()+"/*", uploads(deps.Files))

	r.Group(func(r chi.Router) {
		r.Use(handler.JSONContentType)

		// Auth routes (no auth, rate limited)
		r.Group(func(r chi.Router) {
			r.Use(handler.RateLimit(deps.LoginLimiter))
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})
		r.Post("/logout", authHandler.Logout)

		r.Get("/campaigns", campaignHandler.List)

		// Campaign scope: every player and admin route again under /campaigns/{campaignID}
		r.Route("/campaigns/{campaignID}", func(r chi.Router) {
			r.Use(handler.CampaignScope(campaignSvc))
			r.Get("/", campaignHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Post("/join", campaignHandler.Join)
				r.Delete("/join", campaignHandler.Leave)
				playerRoutes(r)
				r.Route("/admin", adminRoutes)
			})
		})

		// Player-authenticated routes, global scope
		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Route("/me", func(r chi.Router) {
				r.Get("/", playerHandler.GetMe)
				r.Patch("/", playerHandler.UpdateMe)
				r.Put("/password", playerHandler.ChangePassword)
				r.Post("/avatar", playerHandler.UploadAvatar)
			})

			playerRoutes(r)

			r.Route("/admin", func(r chi.Router) {
				adminRoutes(r)
				r.Post("/campaigns", campaignAdmin.Create)
				r.Patch("/campaigns/{id}", campaignAdmin.Update)
				r.Post("/campaigns/{id}/image", campaignAdmin.UploadImage)
			})
		})
	})

	return r
}

// uploads serves files from the upload directory. Directory listings are not served.
func uploads(files *infra.FileStore) http.Handler {
	fs := http.StripPrefix(files.URLPrefix(), http.FileServer(http.Dir(files.Root())))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	})
}
