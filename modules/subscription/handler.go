package subscription

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/evghenimelnic/chat-server/modules/chat"
)

// Router mounts the subscription REST endpoints.
func Router(svc *Service) chi.Router {
	r := chi.NewRouter()

	r.Post("/", createHandler(svc))
	r.Get("/{userID}", listHandler(svc))

	return r
}

func createHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sub Subscription
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}

		created, err := svc.Create(r.Context(), sub)
		if err != nil {
			respondError(w, statusFor(err), err)
			return
		}
		respondJSON(w, http.StatusCreated, created)
	}
}

func listHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subs, err := svc.List(r.Context(), chi.URLParam(r, "userID"))
		if err != nil {
			respondError(w, statusFor(err), err)
			return
		}
		if subs == nil {
			subs = []Subscription{}
		}
		respondJSON(w, http.StatusOK, subs)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrMissingUserID),
		errors.Is(err, ErrInvalidScope),
		errors.Is(err, ErrInvalidWindow),
		errors.Is(err, chat.ErrInvalidLatitude),
		errors.Is(err, chat.ErrInvalidLongitude),
		errors.Is(err, chat.ErrInvalidRadius):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, map[string]string{"error": err.Error()})
}
