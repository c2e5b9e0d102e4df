package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// Router mounts the chat module's REST and websocket endpoints.
func Router(svc *Service, ws *WSHandler) chi.Router {
	r := chi.NewRouter()

	r.Post("/rooms", createRoomHandler(svc))
	r.Get("/rooms", listRoomsHandler(svc))
	r.Get("/rooms/{roomID}/history", roomHistoryHandler(svc))
	r.Get("/common/history", commonHistoryHandler(svc))
	r.Get("/p2p/{sessionID}/history", p2pHistoryHandler(svc))
	r.Post("/p2p/sessions", createSessionHandler(svc))

	r.Get("/ws/common", ws.ServeCommon)
	r.Get("/ws/rooms/{roomID}", func(w http.ResponseWriter, req *http.Request) {
		ws.ServeRoom(chi.URLParam(req, "roomID"))(w, req)
	})
	r.Get("/ws/p2p/{sessionID}/{userID}", func(w http.ResponseWriter, req *http.Request) {
		ws.ServeP2P(chi.URLParam(req, "sessionID"), chi.URLParam(req, "userID"))(w, req)
	})
	r.Get("/ws/subscriptions/{userID}", func(w http.ResponseWriter, req *http.Request) {
		ws.ServeNotifications(chi.URLParam(req, "userID"))(w, req)
	})

	return r
}

func createRoomHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var room Room
		if err := json.NewDecoder(r.Body).Decode(&room); err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}

		created, err := svc.CreateRoom(r.Context(), room)
		if err != nil {
			respondError(w, statusFor(err), err)
			return
		}
		respondJSON(w, http.StatusCreated, created)
	}
}

func listRoomsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := RoomFilter{
			Tags:  q["tags"],
			Topic: q.Get("topic"),
			Query: q.Get("q"),
		}

		var err error
		if filter.Latitude, err = floatParam(q.Get("latitude")); err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
		if filter.Longitude, err = floatParam(q.Get("longitude")); err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
		if filter.RadiusKm, err = floatParam(q.Get("radius_km")); err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
		if filter.StartTime, err = timeParam(q.Get("start_time")); err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
		if filter.EndTime, err = timeParam(q.Get("end_time")); err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}

		rooms, err := svc.ListRooms(r.Context(), filter)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err)
			return
		}
		if rooms == nil {
			rooms = []Room{}
		}
		respondJSON(w, http.StatusOK, rooms)
	}
}

func commonHistoryHandler(svc *Service) http.HandlerFunc {
	return historyHandler(func(r *http.Request, limit int64, before *time.Time) ([]Message, error) {
		return svc.CommonHistory(r.Context(), limit, before)
	})
}

func roomHistoryHandler(svc *Service) http.HandlerFunc {
	return historyHandler(func(r *http.Request, limit int64, before *time.Time) ([]Message, error) {
		return svc.RoomHistory(r.Context(), chi.URLParam(r, "roomID"), limit, before)
	})
}

func p2pHistoryHandler(svc *Service) http.HandlerFunc {
	return historyHandler(func(r *http.Request, limit int64, before *time.Time) ([]Message, error) {
		return svc.P2PHistory(r.Context(), chi.URLParam(r, "sessionID"), limit, before)
	})
}

func historyHandler(fetch func(*http.Request, int64, *time.Time) ([]Message, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		limit := int64(defaultHistoryLimit)
		if raw := q.Get("limit"); raw != "" {
			parsed, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || parsed <= 0 {
				respondError(w, http.StatusBadRequest, errors.New("limit must be a positive integer"))
				return
			}
			limit = parsed
		}

		before, err := timeParam(q.Get("before"))
		if err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}

		history, err := fetch(r, limit, before)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err)
			return
		}
		if history == nil {
			history = []Message{}
		}
		respondJSON(w, http.StatusOK, history)
	}
}

func createSessionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var session Session
		if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}

		created, err := svc.CreateSession(r.Context(), session)
		if err != nil {
			respondError(w, statusFor(err), err)
			return
		}
		respondJSON(w, http.StatusCreated, created)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrMissingUserID),
		errors.Is(err, ErrEmptyContent),
		errors.Is(err, ErrInvalidLatitude),
		errors.Is(err, ErrInvalidLongitude),
		errors.Is(err, ErrInvalidRadius),
		errors.Is(err, ErrMissingRoomName),
		errors.Is(err, ErrInvalidParticipants):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func floatParam(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func timeParam(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, map[string]string{"error": err.Error()})
}
