package session

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/profilejoteam/profilejo-website-sub000/internal/api"
	"github.com/profilejoteam/profilejo-website-sub000/internal/auth"
	"github.com/profilejoteam/profilejo-website-sub000/internal/contextstore"
	"github.com/profilejoteam/profilejo-website-sub000/internal/engagement"
)

const handlerSecret = "jwt-secret-that-is-at-least-32-chars!"

type apiHarness struct {
	t      *testing.T
	reg    *Registry
	router http.Handler
	auth   *auth.Verifier
}

func newAPIHarness(t *testing.T) *apiHarness {
	t.Helper()
	reg, _ := newRegistry(t, Options{})
	v := auth.NewVerifier(handlerSecret, "")
	h := NewHandler(reg)
	router := api.NewRouter(api.RouterConfig{}, api.HandlerSet{
		CreateSession:     h.Create,
		DeleteSession:     h.Delete,
		PostEvents:        h.PostEvents,
		PostMessage:       h.PostMessage,
		GetOutbox:         h.GetOutbox,
		GetAnalysis:       h.GetAnalysis,
		SessionMiddleware: h.SessionMiddleware,
		AuthMiddleware:    auth.Middleware(v),
	})
	return &apiHarness{t: t, reg: reg, router: router, auth: v}
}

func (h *apiHarness) do(method, path, user string, body any) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if user != "" {
		tok, err := h.auth.Issue(user, time.Minute)
		require.NoError(h.t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var env struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Data
}

func (h *apiHarness) create(user string) string {
	h.t.Helper()
	rec := h.do(http.MethodPost, "/api/v1/sessions", user, nil)
	require.Equal(h.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeData[CreateResponse](h.t, rec).SessionID
}

func TestHandler_RequiresAuth(t *testing.T) {
	defer goleak.VerifyNone(t)
	h := newAPIHarness(t)
	defer h.reg.Close()

	rec := h.do(http.MethodPost, "/api/v1/sessions", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_EventsFlowToOutbox(t *testing.T) {
	defer goleak.VerifyNone(t)
	h := newAPIHarness(t)
	defer h.reg.Close()
	id := h.create("user-1")
	base := "/api/v1/sessions/" + id

	rec := h.do(http.MethodPost, base+"/events", "user-1", EventsRequest{Events: []EventRequest{
		{Type: EventActivity, Kind: engagement.ActivityClick},
		{Type: EventFieldFocus, Field: "email"},
	}})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	status := decodeData[engagement.Status](t, rec)
	assert.Equal(t, "visible", status.State)
	assert.Equal(t, 1, status.InteractionScore)

	rec = h.do(http.MethodGet, base+"/outbox", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cmds := decodeData[[]engagement.Command](t, rec)
	require.Len(t, cmds, 1)
	assert.Equal(t, engagement.CommandShowNotification, cmds[0].Type)

	rec = h.do(http.MethodGet, base+"/outbox", "user-1", nil)
	assert.Empty(t, decodeData[[]engagement.Command](t, rec))
}

func TestHandler_ValidatesEvents(t *testing.T) {
	defer goleak.VerifyNone(t)
	h := newAPIHarness(t)
	defer h.reg.Close()
	base := "/api/v1/sessions/" + h.create("user-1")

	cases := []struct {
		name string
		body any
	}{
		{"empty batch", EventsRequest{}},
		{"unknown type", EventsRequest{Events: []EventRequest{{Type: "teleport"}}}},
		{"focus without field", EventsRequest{Events: []EventRequest{{Type: EventFieldFocus}}}},
		{"snapshot without body", EventsRequest{Events: []EventRequest{{Type: EventSnapshot}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := h.do(http.MethodPost, base+"/events", "user-1", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	req := httptest.NewRequest(http.MethodPost, base+"/events", bytes.NewBufferString("{not json"))
	tok, err := h.auth.Issue("user-1", time.Minute)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_MessageReplyArrivesInOutbox(t *testing.T) {
	defer goleak.VerifyNone(t)
	h := newAPIHarness(t)
	defer h.reg.Close()
	base := "/api/v1/sessions/" + h.create("user-1")

	rec := h.do(http.MethodPost, base+"/messages", "user-1", MessageRequest{Text: "كيف أكتب مهاراتي؟"})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var replies []contextstore.Record
	assert.Eventually(t, func() bool {
		rec := h.do(http.MethodGet, base+"/outbox", "user-1", nil)
		for _, c := range decodeData[[]engagement.Command](t, rec) {
			if c.Type == engagement.CommandShowMessage && c.Message != nil && c.Message.Sender == contextstore.SenderAssistant {
				replies = append(replies, *c.Message)
			}
		}
		return len(replies) > 0
	}, time.Second, 10*time.Millisecond)
	require.NotEmpty(t, replies)
	assert.Equal(t, contextstore.KindFallback, replies[0].Kind)

	rec = h.do(http.MethodPost, base+"/messages", "user-1", MessageRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_OwnershipAndDelete(t *testing.T) {
	defer goleak.VerifyNone(t)
	h := newAPIHarness(t)
	defer h.reg.Close()
	base := "/api/v1/sessions/" + h.create("owner")

	rec := h.do(http.MethodGet, base+"/analysis", "intruder", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(http.MethodGet, base+"/analysis", "owner", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	status := decodeData[engagement.Status](t, rec)
	assert.Equal(t, "idle", status.State)

	rec = h.do(http.MethodDelete, base, "owner", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = h.do(http.MethodGet, base+"/analysis", "owner", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_CreateWithSnapshot(t *testing.T) {
	defer goleak.VerifyNone(t)
	h := newAPIHarness(t)
	defer h.reg.Close()

	body := map[string]any{"snapshot": map[string]any{"job_title": "Civil Engineer", "current_step": 3}}
	rec := h.do(http.MethodPost, "/api/v1/sessions", "user-1", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeData[CreateResponse](t, rec).SessionID

	s, err := h.reg.Get(id)
	require.NoError(t, err)
	assert.Empty(t, s.Drain())
}
