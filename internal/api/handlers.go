// Package api exposes HTTP handlers for the exercise tracker.
package api

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"example.com/tracker/internal/dates"
	"example.com/tracker/internal/domain"
)

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service *domain.Service
	log     *logrus.Logger
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service, log *logrus.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// RegisterRoutes wires endpoints to the router.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/users", h.listUsers).Methods(http.MethodGet)
	r.HandleFunc("/api/users", h.createUser).Methods(http.MethodPost)
	r.HandleFunc("/api/users/{id}/exercises", h.createExercise).Methods(http.MethodPost)
	r.HandleFunc("/api/users/{id}/logs", h.getLogs).Methods(http.MethodGet)
	r.HandleFunc("/healthz", healthz).Methods(http.MethodGet)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNoUsers) {
			writeError(w, http.StatusNotFound, "No users found")
			return
		}
		h.serverError(w, r, err)
		return
	}

	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, toUserView(u))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Unable to parse request body")
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		writeError(w, http.StatusBadRequest, "Username can not be empty")
		return
	}

	user, err := h.service.CreateUser(r.Context(), username)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateUsername) {
			writeError(w, http.StatusBadRequest, "User with same username already exists")
			return
		}
		h.serverError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserView(*user))
}

func (h *Handler) createExercise(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "User with that id does not exist")
		return
	}

	var req CreateExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Unable to parse request body")
		return
	}

	duration, date, err := req.Resolve()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	exercise, err := h.service.CreateExercise(r.Context(), domain.Exercise{
		UserID:      userID,
		Description: req.Description,
		Duration:    duration,
		Date:        date,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "User with that id does not exist")
			return
		}
		h.serverError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ExerciseView{
		UserID:      exercise.UserID,
		ExerciseID:  exercise.ID,
		Duration:    exercise.Duration,
		Description: exercise.Description,
		Date:        exercise.Date,
	})
}

func (h *Handler) getLogs(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "User with this id does not exist")
		return
	}

	filter := domain.LogFilter{
		From: r.URL.Query().Get("from"),
		To:   r.URL.Query().Get("to"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			filter.Limit = parsed
		}
	}

	log, err := h.service.GetLogs(r.Context(), userID, filter)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "User with this id does not exist")
			return
		}
		h.serverError(w, r, err)
		return
	}

	entries := make([]LogEntryView, 0, len(log.Exercises))
	for _, e := range log.Exercises {
		entries = append(entries, LogEntryView{
			ID:          e.ID,
			Description: e.Description,
			Duration:    e.Duration,
			Date:        e.Date,
		})
	}

	writeJSON(w, http.StatusOK, LogView{
		ID:       log.User.ID,
		Username: log.User.Username,
		Logs:     entries,
		Count:    log.Count,
	})
}

// parseUserID reads the {id} path variable. A non-numeric id can never
// match a stored user, so it is reported the same way as an unknown one.
func parseUserID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.log.WithError(err).WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}).Error("storage failure")
	writeError(w, http.StatusInternalServerError, "Server error")
}

// CreateUserRequest is the payload for POST /api/users.
type CreateUserRequest struct {
	Username string `json:"username"`
}

// CreateExerciseRequest is the payload for POST /api/users/{id}/exercises.
// Duration stays raw so an absent field is distinguishable from a
// provided zero, and so numeric strings coerce the way the API has
// always accepted them.
type CreateExerciseRequest struct {
	Description string          `json:"description"`
	Duration    json.RawMessage `json:"duration"`
	Date        string          `json:"date"`
}

// Resolve validates the request and returns the coerced duration and
// the resolved date, defaulting to today (UTC) when no date was sent.
func (r CreateExerciseRequest) Resolve() (int, string, error) {
	if r.Description == "" {
		return 0, "", errors.New("Description is required")
	}

	if len(r.Duration) == 0 || string(r.Duration) == "null" {
		return 0, "", errors.New("Duration is required")
	}
	value, err := coerceNumber(r.Duration)
	if err != nil || value <= 0 {
		return 0, "", errors.New("Duration needs to be a positive number")
	}
	duration := int(math.Trunc(value))

	date := r.Date
	if date == "" {
		date = dates.Today()
	} else if !dates.IsValid(date) {
		return 0, "", errors.New("Invalid date format. Use YYYY-MM-DD")
	}

	return duration, date, nil
}

// coerceNumber accepts a JSON number or a numeric string.
func coerceNumber(raw json.RawMessage) (float64, error) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// UserView is the public shape of a user record.
type UserView struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// ExerciseView echoes a newly created exercise.
type ExerciseView struct {
	UserID      int64  `json:"userId"`
	ExerciseID  int64  `json:"exerciseId"`
	Duration    int    `json:"duration"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

// LogEntryView is a single exercise inside a log response.
type LogEntryView struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	Duration    int    `json:"duration"`
	Date        string `json:"date"`
}

// LogView is the response for GET /api/users/{id}/logs.
type LogView struct {
	ID       int64          `json:"id"`
	Username string         `json:"username"`
	Logs     []LogEntryView `json:"logs"`
	Count    int            `json:"count"`
}

func toUserView(u domain.User) UserView {
	return UserView{ID: u.ID, Username: u.Username}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
