package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/profilejoteam/profilejo-website-sub000/internal/api"
	"github.com/profilejoteam/profilejo-website-sub000/internal/auth"
	"github.com/profilejoteam/profilejo-website-sub000/internal/contextstore"
	"github.com/profilejoteam/profilejo-website-sub000/internal/engagement"
	"github.com/profilejoteam/profilejo-website-sub000/internal/profile"
)

// Event types accepted by PostEvents.
const (
	EventFieldFocus  = "field_focus"
	EventFieldBlur   = "field_blur"
	EventSnapshot    = "snapshot"
	EventActivity    = "activity"
	EventInteract    = "interact"
	EventDismiss     = "dismiss"
	EventOpenChat    = "open_chat"
	EventCloseChat   = "close_chat"
	EventPreferences = "preferences"
)

// EventRequest is one browser event.
type EventRequest struct {
	Type           string                    `json:"type" validate:"required,oneof=field_focus field_blur snapshot activity interact dismiss open_chat close_chat preferences"`
	Field          string                    `json:"field,omitempty" validate:"required_if=Type field_focus,required_if=Type field_blur,max=64"`
	Value          string                    `json:"value,omitempty" validate:"max=10000"`
	Kind           string                    `json:"kind,omitempty" validate:"required_if=Type activity,max=32"`
	NotificationID string                    `json:"notification_id,omitempty" validate:"max=128"`
	Snapshot       *profile.FormSnapshot     `json:"snapshot,omitempty" validate:"required_if=Type snapshot"`
	Preferences    *contextstore.Preferences `json:"preferences,omitempty" validate:"required_if=Type preferences"`
}

// EventsRequest is a batch of events applied in order.
type EventsRequest struct {
	Events []EventRequest `json:"events" validate:"required,min=1,max=50,dive"`
}

type MessageRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

type CreateRequest struct {
	Snapshot *profile.FormSnapshot `json:"snapshot,omitempty"`
}

type CreateResponse struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

const maxBodyBytes = 1 << 20

type sessionCtxKey struct{}

func getSession(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionCtxKey{}).(*Session)
	return s
}

type Handler struct {
	reg      *Registry
	validate *validator.Validate
}

func NewHandler(reg *Registry) *Handler {
	return &Handler{
		reg:      reg,
		validate: validator.New(),
	}
}

// SessionMiddleware resolves {sessionID} and rejects sessions owned by
// another user.
func (h *Handler) SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := auth.UserID(r.Context())
		if userID == "" {
			api.HandleError(w, api.ErrUnauthorized)
			return
		}

		s, err := h.reg.Get(chi.URLParam(r, "sessionID"))
		if err != nil {
			api.HandleError(w, api.ErrSessionNotFound)
			return
		}
		if s.UserID != userID {
			api.HandleError(w, api.ErrOwnershipViolation)
			return
		}

		ctx := context.WithValue(r.Context(), sessionCtxKey{}, s)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == "" {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	var req CreateRequest
	if err := decode(r, &req); err != nil && !errors.Is(err, io.EOF) {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	s, err := h.reg.Create(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrClosed) {
			api.HandleError(w, api.ErrUnavailable)
			return
		}
		slog.Error("session: creating session", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	if req.Snapshot != nil {
		snap := *req.Snapshot
		if err := s.Do(r.Context(), func(e *engagement.Engine) { e.OnFormSnapshotChanged(snap) }); err != nil {
			h.loopError(w, err)
			return
		}
	}

	api.JSON(w, http.StatusCreated, CreateResponse{SessionID: s.ID, UserID: s.UserID, CreatedAt: s.CreatedAt})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	s := getSession(r.Context())
	if s == nil {
		api.HandleError(w, api.ErrSessionNotFound)
		return
	}
	if err := h.reg.Delete(s.ID); err != nil {
		api.HandleError(w, api.ErrSessionNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) PostEvents(w http.ResponseWriter, r *http.Request) {
	s := getSession(r.Context())
	if s == nil {
		api.HandleError(w, api.ErrSessionNotFound)
		return
	}

	var req EventsRequest
	if err := decode(r, &req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	var status engagement.Status
	err := s.Do(r.Context(), func(e *engagement.Engine) {
		for _, ev := range req.Events {
			apply(e, ev)
		}
		status = e.Status()
	})
	if err != nil {
		h.loopError(w, err)
		return
	}
	api.JSON(w, http.StatusAccepted, status)
}

// apply routes one event to its engine handler.
func apply(e *engagement.Engine, ev EventRequest) {
	switch ev.Type {
	case EventFieldFocus:
		e.OnFieldFocus(ev.Field)
	case EventFieldBlur:
		e.OnFieldBlur(ev.Field, ev.Value)
	case EventSnapshot:
		e.OnFormSnapshotChanged(*ev.Snapshot)
	case EventActivity:
		e.OnActivity(ev.Kind)
	case EventInteract:
		e.Interact(ev.NotificationID)
	case EventDismiss:
		e.Dismiss(ev.NotificationID)
	case EventOpenChat:
		e.OpenChat()
	case EventCloseChat:
		e.CloseChat()
	case EventPreferences:
		e.SetPreferences(*ev.Preferences)
	}
}

// PostMessage accepts a chat message. The reply is delivered through the
// outbox once the reasoning call or its fallback completes.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	s := getSession(r.Context())
	if s == nil {
		api.HandleError(w, api.ErrSessionNotFound)
		return
	}

	var req MessageRequest
	if err := decode(r, &req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	if err := s.SendMessage(req.Text); err != nil {
		h.loopError(w, err)
		return
	}
	api.JSONMessage(w, http.StatusAccepted, "message accepted")
}

func (h *Handler) GetOutbox(w http.ResponseWriter, r *http.Request) {
	s := getSession(r.Context())
	if s == nil {
		api.HandleError(w, api.ErrSessionNotFound)
		return
	}
	api.JSON(w, http.StatusOK, s.Drain())
}

func (h *Handler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	s := getSession(r.Context())
	if s == nil {
		api.HandleError(w, api.ErrSessionNotFound)
		return
	}

	var status engagement.Status
	if err := s.Do(r.Context(), func(e *engagement.Engine) { status = e.Status() }); err != nil {
		h.loopError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, status)
}

func (h *Handler) loopError(w http.ResponseWriter, err error) {
	if errors.Is(err, engagement.ErrStopped) {
		api.HandleError(w, api.ErrSessionNotFound)
		return
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		api.HandleError(w, api.ErrUnavailable)
		return
	}
	slog.Error("session: loop call failed", "error", err)
	api.HandleError(w, api.ErrInternalServer)
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
}
