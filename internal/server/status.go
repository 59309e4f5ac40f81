package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/roomsync/internal/actors"
	"github.com/desertthunder/roomsync/internal/metrics"
	"github.com/desertthunder/roomsync/internal/models"
)

// ViewSource returns the latest published view. Implemented by [actors.Supervisor].
type ViewSource interface {
	View() actors.View
}

// RoomsHandler serves room snapshots and the rest of the published view as JSON.
type RoomsHandler struct {
	source ViewSource
}

func NewRoomsHandler(source ViewSource) *RoomsHandler {
	return &RoomsHandler{source: source}
}

// Routes implements [Handler].
func (h *RoomsHandler) Routes() []string {
	return []string{"GET /rooms", "GET /rooms/{id}", "GET /view"}
}

type wizardResponse struct {
	Step       string         `json:"step"`
	Variant    string         `json:"variant"`
	Name       string         `json:"roomName"`
	Visibility string         `json:"visibility"`
	InviteOnly bool           `json:"invitationOnly"`
	Phase      string         `json:"phase,omitempty"`
	Tracks     []models.Track `json:"tracks,omitempty"`
	CanConfirm bool           `json:"canConfirm"`
}

type viewResponse struct {
	DisplayedRoom string              `json:"displayedRoom,omitempty"`
	Rooms         []string            `json:"rooms"`
	Wizard        *wizardResponse     `json:"wizard,omitempty"`
	Invitation    *models.RoomSummary `json:"invitation,omitempty"`
}

// ServeHTTP implements [http.Handler].
func (h *RoomsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	view := h.source.View()

	if r.URL.Path == "/view" {
		writeJSON(w, http.StatusOK, newViewResponse(view))
		return
	}

	id := r.PathValue("id")
	if id == "" {
		rooms := view.Rooms
		if rooms == nil {
			rooms = []actors.RoomSnapshot{}
		}
		writeJSON(w, http.StatusOK, rooms)
		return
	}

	room, ok := view.Room(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("room %s is not open", id)})
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func newViewResponse(view actors.View) viewResponse {
	resp := viewResponse{
		DisplayedRoom: view.DisplayedRoom,
		Rooms:         make([]string, 0, len(view.Rooms)),
		Invitation:    view.Invitation,
	}
	for _, room := range view.Rooms {
		resp.Rooms = append(resp.Rooms, room.Room.ID)
	}
	if wz := view.Wizard; wz != nil {
		resp.Wizard = &wizardResponse{
			Step:       wz.Step.String(),
			Variant:    wz.Draft.Variant.String(),
			Name:       wz.Draft.Name,
			Visibility: wz.Draft.Visibility.String(),
			InviteOnly: wz.Draft.InvitationOnly,
			Tracks:     wz.Tracks,
			CanConfirm: wz.CanConfirm,
		}
		if wz.Step == models.StepConfirmation {
			resp.Wizard.Phase = wz.Phase.String()
		}
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

// NewStatusRouter builds the status server routes: [RoomsHandler], /metrics and /healthz.
// A nil m serves no /metrics route.
func NewStatusRouter(source ViewSource, m *metrics.Metrics, logger *log.Logger) *BasicRouter {
	router := NewBasicRouter()
	router.Use(RequestLogger(logger), CountRequests(m))

	router.Handler(NewRoomsHandler(source))
	router.HandleFunc(http.MethodGet, "/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if m != nil {
		router.Handle(http.MethodGet, "/metrics", m.Handler(func() {
			m.SetActiveRooms(len(source.View().Rooms))
		}))
	}
	return router
}

// Serve listens on addr and serves handler until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *log.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return serve(ctx, ln, handler, logger)
}

func serve(ctx context.Context, ln net.Listener, handler http.Handler, logger *log.Logger) error {
	httpServer := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("status server listening", "addr", ln.Addr().String())
		serverErrors <- httpServer.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("status server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("error shutting down status server", "error", err)
		return err
	}
	return nil
}
