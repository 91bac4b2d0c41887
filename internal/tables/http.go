package tables

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"Storefront/internal/session"
	"Storefront/pkg/kit"
)

const (
	msgBadID         = "Invalid ID format"
	msgNotFound      = "Record not found"
	msgEmptyBody     = "Request body cannot be empty"
	msgBadData       = "Invalid data format for this table"
	msgCreated       = "Record created successfully"
	msgUnavailable   = "Database connection unavailable"
	msgInvalidQuery  = "Invalid database request"
	msgInternalError = "Internal server error"
)

type Server struct {
	Repo Repository
	Log  *zap.Logger

	// Limiter throttles everything under /api when set.
	Limiter *kit.IPRateLimiter
	// Tokens, when set, requires a valid bearer token to create records.
	Tokens *session.TokenMaker

	Now func() time.Time
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", s.ready)

	r.Route("/api", func(api chi.Router) {
		if s.Limiter != nil {
			api.Use(s.Limiter.Middleware)
		}

		api.Get("/health", s.health)

		api.Route("/tables", func(tr chi.Router) {
			tr.Use(s.requireDB)
			tr.Get("/{tableName}", s.list)
			tr.Get("/{tableName}/{id}", s.get)
			tr.Post("/{tableName}", s.create)
		})
	})

	return r
}

func (s *Server) log() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (s *Server) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	if err := s.Repo.Ping(r.Context()); err != nil {
		s.log().Warn("readyz failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type healthResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	db := "connected"
	if err := s.Repo.Ping(r.Context()); err != nil {
		db = "disconnected"
	}
	kit.WriteJSON(w, http.StatusOK, healthResponse{
		Success:   true,
		Message:   "API is running",
		Database:  db,
		Timestamp: s.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	})
}

// requireDB answers 503 before any query runs when the pool is unreachable.
func (s *Server) requireDB(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := s.Repo.Ping(r.Context()); err != nil {
			s.log().Warn("database unavailable", zap.Error(err))
			kit.WriteError(w, r, http.StatusServiceUnavailable, msgUnavailable, nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeGuard() func(http.Handler) http.Handler {
	if s.Tokens == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return session.Require(s.Tokens)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "tableName")
	t, ok := Parse(name)
	if !ok {
		kit.WriteError(w, r, http.StatusBadRequest, notAccessible(name, false), nil)
		return
	}

	rows, err := s.Repo.List(r.Context(), t)
	if err != nil {
		s.writeRepoError(w, r, err)
		return
	}
	kit.WriteList(w, rows)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "tableName")
	t, ok := Parse(name)
	if !ok {
		kit.WriteError(w, r, http.StatusBadRequest, notAccessible(name, false), nil)
		return
	}

	id, err := ParseID(chi.URLParam(r, "id"))
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, msgBadID, nil)
		return
	}

	row, found, err := s.Repo.Get(r.Context(), t, id)
	if err != nil {
		s.writeRepoError(w, r, err)
		return
	}
	if !found {
		kit.WriteError(w, r, http.StatusNotFound, msgNotFound, nil)
		return
	}
	kit.WriteData(w, http.StatusOK, row, "")
}

type createdResponse struct {
	ID int64 `json:"id"`
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "tableName")
	t, ok := Parse(name)
	if !ok {
		kit.WriteError(w, r, http.StatusBadRequest, notAccessible(name, true), nil)
		return
	}

	body, err := decodeObject(r.Body)
	switch {
	case errors.Is(err, errEmptyBody):
		kit.WriteError(w, r, http.StatusBadRequest, msgEmptyBody, nil)
		return
	case err != nil:
		kit.WriteError(w, r, http.StatusBadRequest, msgBadData, nil)
		return
	}

	u, ok := newUserFrom(t, body)
	if !ok {
		kit.WriteError(w, r, http.StatusBadRequest, msgBadData, nil)
		return
	}

	// token check runs last: bad tables and bodies answer 400 with or without a token
	s.writeGuard()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := s.Repo.CreateUser(r.Context(), u)
		if err != nil {
			s.writeRepoError(w, r, err)
			return
		}
		kit.WriteData(w, http.StatusCreated, createdResponse{ID: id}, msgCreated)
	})).ServeHTTP(w, r)
}

func notAccessible(name string, create bool) string {
	if create {
		return fmt.Sprintf("Table '%s' is not accessible for creation through this API", name)
	}
	return fmt.Sprintf("Table '%s' is not accessible through this API", name)
}

var errEmptyBody = errors.New("empty body")

// decodeObject reads a single JSON object. A missing body, null and {} are
// all reported as errEmptyBody.
func decodeObject(body io.Reader) (map[string]any, error) {
	if body == nil {
		return nil, errEmptyBody
	}

	var v any
	dec := json.NewDecoder(body)
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errEmptyBody
		}
		return nil, err
	}
	if v == nil {
		return nil, errEmptyBody
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after object")
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errors.New("body is not an object")
	}
	if len(obj) == 0 {
		return nil, errEmptyBody
	}
	return obj, nil
}

// newUserFrom accepts only a users record carrying non-empty name and email.
func newUserFrom(t Table, body map[string]any) (NewUser, bool) {
	if t != Users {
		return NewUser{}, false
	}
	name, _ := body["name"].(string)
	email, _ := body["email"].(string)
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || email == "" {
		return NewUser{}, false
	}
	return NewUser{Name: name, Email: email}, true
}

// writeRepoError hides the cause from the client: errors raised by the
// database for the statement become 400, everything else 500.
func (s *Server) writeRepoError(w http.ResponseWriter, r *http.Request, err error) {
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr):
		s.log().Warn("database rejected request",
			zap.String("code", pgErr.Code),
			zap.Error(err),
		)
		kit.WriteError(w, r, http.StatusBadRequest, msgInvalidQuery, nil)
	default:
		s.log().Error("table request failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, msgInternalError, nil)
	}
}
