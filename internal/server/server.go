package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ldi/gotask/embed/web_assets"
	"github.com/ldi/gotask/internal/planner"
	"github.com/ldi/gotask/pkg/models"
)

type Server struct {
	planner *planner.Planner
	server  *http.Server
}

func NewServer(p *planner.Planner) *Server {
	return &Server{planner: p}
}

// Handler returns the API and static board routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// API endpoints
	mux.HandleFunc("GET /api/week", s.handleWeek)
	mux.HandleFunc("GET /api/tasks", s.handleTasks)
	mux.HandleFunc("POST /api/tasks", s.handleAddTask)
	mux.HandleFunc("GET /api/settings", s.handleSettings)
	mux.HandleFunc("GET /api/status", s.handleStatus)

	// Static files
	mux.Handle("GET /", http.FileServer(http.FS(web_assets.Assets)))
	return mux
}

func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleWeek(w http.ResponseWriter, r *http.Request) {
	s.respond(w, s.planner.Board(), nil)
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	s.respond(w, models.WithoutTutorial(s.planner.Tasks()), nil)
}

type addTaskRequest struct {
	Text           string            `json:"text"`
	Date           string            `json:"date"`
	Important      bool              `json:"important"`
	Pinned         bool              `json:"pinned"`
	Color          string            `json:"color"`
	FontStyle      models.FontStyle  `json:"font_style"`
	FontWeight     models.FontWeight `json:"font_weight"`
	Highlight      bool              `json:"highlight"`
	HighlightColor string            `json:"highlight_color"`
}

func (s *Server) handleAddTask(w http.ResponseWriter, r *http.Request) {
	var req addTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	in := planner.NewTask{
		Text:           req.Text,
		Important:      req.Important,
		Pinned:         req.Pinned,
		Color:          req.Color,
		FontStyle:      req.FontStyle,
		FontWeight:     req.FontWeight,
		Highlight:      req.Highlight || req.HighlightColor != "",
		HighlightColor: req.HighlightColor,
	}
	if req.Date != "" {
		d, err := s.planner.ParseDate(req.Date)
		if err != nil {
			s.respond(w, nil, err)
			return
		}
		in.Date = d
	}

	task, err := s.planner.AddTask(r.Context(), in)
	if err != nil {
		s.respond(w, nil, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(task)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	s.respond(w, s.planner.Settings(), nil)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.respond(w, s.planner.Status(), nil)
}

func (s *Server) respond(w http.ResponseWriter, data any, err error) {
	if err != nil {
		status := http.StatusInternalServerError
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}
