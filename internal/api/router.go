package api

import (
	"context"
	"net/http"

	"github.com/go-chi/cors"
	"github.com/julienschmidt/httprouter"

	apiContext "recruitr/internal/api/context"
	"recruitr/internal/api/handlers"
	"recruitr/internal/api/middleware"
	"recruitr/internal/platform/config"
)

type Dependencies struct {
	AuthHandler       *handlers.AuthHandler
	UserHandler       *handlers.UserHandler
	OrgHandler        *handlers.OrgHandler
	InviteHandler     *handlers.InviteHandler
	SuperadminHandler *handlers.SuperadminHandler
	FavoritesHandler  *handlers.FavoritesHandler
	UploadHandler     *handlers.UploadHandler
	HealthHandler     *handlers.HealthHandler
	Session           *middleware.Session
	Superadmin        *middleware.Superadmin
	CORS              config.CORSConfig
}

func NewRouter(deps *Dependencies) http.Handler {
	router := httprouter.New()

	router.GET("/health", wrap(deps.HealthHandler.Check))

	// OAuth exchange. The callback accepts HEAD for pre-flight probes.
	router.GET("/auth/google/login", wrap(deps.AuthHandler.GoogleLogin))
	router.GET("/auth/google/callback", wrap(deps.AuthHandler.GoogleCallback))
	router.HEAD("/auth/google/callback", wrap(deps.AuthHandler.GoogleCallback))
	router.POST("/auth/logout", wrap(deps.AuthHandler.Logout))

	session := deps.Session

	router.GET("/api/v1/me",
		chain(deps.UserHandler.Me, session.Handle, middleware.RequireUser))

	router.GET("/api/v1/organizations/current",
		chain(deps.OrgHandler.GetCurrent, session.Handle, middleware.RequireUser))
	router.PATCH("/api/v1/organizations/current",
		chain(deps.OrgHandler.Update, session.Handle, middleware.RequireAdmin))

	router.POST("/api/v1/invites",
		chain(deps.InviteHandler.Create, session.Handle, middleware.RequireAdmin))
	router.GET("/api/v1/invites",
		chain(deps.InviteHandler.List, session.Handle, middleware.RequireAdmin))
	router.DELETE("/api/v1/invites/:invite_id",
		chain(deps.InviteHandler.Revoke, session.Handle, middleware.RequireAdmin))

	router.GET("/superadmin/organizations",
		chain(deps.SuperadminHandler.ListOrganizations, session.Handle, deps.Superadmin.Require))
	router.GET("/superadmin/users",
		chain(deps.SuperadminHandler.ListUsers, session.Handle, deps.Superadmin.Require))

	router.POST("/favorites/toggle",
		chain(deps.FavoritesHandler.Toggle, session.Handle, middleware.RequireUser))
	router.GET("/favorites/:jd_id",
		chain(deps.FavoritesHandler.ListForJD, session.Handle, middleware.RequireUser))

	router.POST("/upload/jd",
		chain(deps.UploadHandler.UploadJD, session.Handle, middleware.RequireUser))
	router.POST("/upload/resumes",
		chain(deps.UploadHandler.UploadResumes, session.Handle, middleware.RequireUser))

	// Credentialed cross-site requests from the frontend need CORS on every
	// route, so the whole router is wrapped.
	corsWrapper := cors.New(cors.Options{
		AllowedOrigins:   deps.CORS.AllowedOrigins,
		AllowedMethods:   deps.CORS.AllowedMethods,
		AllowedHeaders:   deps.CORS.AllowedHeaders,
		AllowCredentials: true,
		MaxAge:           deps.CORS.MaxAge,
	})

	return corsWrapper.Handler(router)
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle, injecting route params into
// the request context.
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}
