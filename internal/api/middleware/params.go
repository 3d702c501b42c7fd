package middleware

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "recruitr/internal/api/context"
)

// Param reads a named route parameter injected by the router wrapper.
func Param(r *http.Request, name string) string {
	params, _ := r.Context().Value(apiContext.Params).(httprouter.Params)
	return params.ByName(name)
}
