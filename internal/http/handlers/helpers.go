package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/brosora6/sora-sub000/internal/backoffice"
	"github.com/brosora6/sora-sub000/internal/middleware"
	"github.com/brosora6/sora-sub000/pkg/response"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

var errMissingParam = errors.New("missing param")

func zapError(err error) zap.Field {
	return zap.Error(err)
}

func readPathString(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}

func readPathInt64(r *http.Request, key string) (int64, error) {
	value := readPathString(r, key)
	if value == "" {
		return 0, errMissingParam
	}
	var out int64
	_, err := fmt.Sscan(value, &out)
	return out, err
}

func intToString(v int) string {
	return strconv.Itoa(v)
}

// requireAuth pulls the authenticated identity out of the request context.
// Writes the 401 itself when the guard did not run.
func requireAuth(w http.ResponseWriter, r *http.Request) (*middleware.AuthContext, bool) {
	authCtx, ok := middleware.GetAuthContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return nil, false
	}
	return authCtx, true
}

// requireActor additionally checks the resource capability gate for
// back-office requests.
func requireActor(w http.ResponseWriter, r *http.Request, allowed func(backoffice.Actor) bool) (backoffice.Actor, bool) {
	authCtx, ok := requireAuth(w, r)
	if !ok {
		return backoffice.Actor{}, false
	}
	actor := backoffice.Actor{
		ID:           authCtx.ActorID,
		Role:         authCtx.Role,
		Capabilities: authCtx.Capabilities,
	}
	if !allowed(actor) {
		response.Error(w, http.StatusForbidden, "FORBIDDEN", "You do not have access to this resource")
		return backoffice.Actor{}, false
	}
	return actor, true
}
