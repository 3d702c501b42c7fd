package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"recruitr/internal/api"
	"recruitr/internal/api/handlers"
	"recruitr/internal/api/middleware"
	"recruitr/internal/engine/oauth"
	"recruitr/internal/engine/provisioning"
	"recruitr/internal/pkg/logger"
	"recruitr/internal/platform/auth"
	"recruitr/internal/platform/config"
	"recruitr/internal/platform/database"
	"recruitr/internal/platform/repositories"
	"recruitr/internal/platform/sessions"
)

const sidCookieName = "rp_sid"

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Logging)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	orgRepo := repositories.NewOrganizationRepository(db)
	memberRepo := repositories.NewMembershipRepository(db)
	inviteRepo := repositories.NewInvitationRepository(db)
	candidateRepo := repositories.NewCandidateRepository(db)
	uploadRepo := repositories.NewUploadRepository(db)

	// Services
	tokenSvc, err := auth.NewTokenService(cfg.JWT)
	if err != nil {
		log.Fatalf("Failed to configure token service: %v", err)
	}

	ctx := context.Background()
	provider, err := oauth.NewGoogleProvider(ctx, cfg.OAuth)
	if err != nil {
		log.Fatalf("Failed to configure OAuth provider: %v", err)
	}

	store := sessions.NewStore(db)
	store.StartJanitor(ctx, cfg.Sessions.PurgeInterval)

	provisioner := provisioning.NewService(db, userRepo, orgRepo, memberRepo, inviteRepo)

	cookies := auth.NewCookieWriter(cfg.Cookie, cfg.JWT.TTL)
	sidCookies := auth.NewCookieWriter(config.CookieConfig{
		Name:    sidCookieName,
		Profile: cfg.Cookie.Profile,
	}, cfg.Sessions.StateTTL)

	// Middleware
	session := middleware.NewSession(tokenSvc, cookies)
	superadmin := middleware.NewSuperadmin(userRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(provider, store, provisioner, tokenSvc,
		cookies, sidCookies, cfg.Frontend, cfg.Sessions, cfg.OAuth)
	userHandler := handlers.NewUserHandler(userRepo, orgRepo, memberRepo)
	orgHandler := handlers.NewOrgHandler(orgRepo)
	inviteHandler := handlers.NewInviteHandler(inviteRepo)
	superadminHandler := handlers.NewSuperadminHandler(userRepo, orgRepo)
	favoritesHandler := handlers.NewFavoritesHandler(candidateRepo)
	uploadHandler := handlers.NewUploadHandler(uploadRepo)
	healthHandler := handlers.NewHealthHandler(db)

	router := api.NewRouter(&api.Dependencies{
		AuthHandler:       authHandler,
		UserHandler:       userHandler,
		OrgHandler:        orgHandler,
		InviteHandler:     inviteHandler,
		SuperadminHandler: superadminHandler,
		FavoritesHandler:  favoritesHandler,
		UploadHandler:     uploadHandler,
		HealthHandler:     healthHandler,
		Session:           session,
		Superadmin:        superadmin,
		CORS:              cfg.CORS,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	log.Printf("Server starting on %s", addr)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
