package reasoning

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profilejoteam/profilejo-website-sub000/internal/classifier"
	"github.com/profilejoteam/profilejo-website-sub000/internal/contextstore"
	"github.com/profilejoteam/profilejo-website-sub000/internal/lexicon"
)

func TestClient_Ask(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text":"  أضف مهاراتك  ","suggestion":{"fields":{"job_title":"Backend Developer"},"confidence":1.7,"source":"model"}}`))
	}))
	defer srv.Close()

	history := make([]contextstore.Record, 8)
	for i := range history {
		history[i] = contextstore.Record{ID: string(rune('a' + i)), Sender: contextstore.SenderUser}
	}

	c := NewClient(srv.URL, "secret", time.Second)
	resp, err := c.Ask(context.Background(), Request{
		Message: "hello",
		Context: RequestContext{
			ConversationHistory: history,
			ProfileAnalysis:     classifier.ProfileAnalysis{EstimatedField: lexicon.DomainDesign},
			Topics:              []string{"skills"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "أضف مهاراتك", resp.Text)
	require.NotNil(t, resp.Suggestion)
	assert.Equal(t, 1.0, resp.Suggestion.Confidence)
	assert.Equal(t, "Backend Developer", resp.Suggestion.Fields["job_title"])

	assert.Equal(t, "hello", got.Message)
	require.Len(t, got.Context.ConversationHistory, MaxHistory)
	assert.Equal(t, "d", got.Context.ConversationHistory[0].ID)
	assert.Equal(t, lexicon.DomainDesign, got.Context.ProfileAnalysis.EstimatedField)
}

func TestClient_SuggestionWithMixedValues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text":"Add your graduation year","suggestion":{"fields":{"graduation_year":2020,"skills":["go"]},"confidence":0.9}}`))
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL, "", time.Second).Ask(context.Background(), Request{Message: "x"})
	require.NoError(t, err)
	assert.Equal(t, "Add your graduation year", resp.Text)
	require.NotNil(t, resp.Suggestion)
	assert.Equal(t, 0.9, resp.Suggestion.Confidence)
	assert.Equal(t, float64(2020), resp.Suggestion.Fields["graduation_year"])
	assert.Equal(t, []any{"go"}, resp.Suggestion.Fields["skills"])
}

func TestClient_RequestShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw struct {
			Message string                     `json:"message"`
			Context map[string]json.RawMessage `json:"context"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		assert.Equal(t, "x", raw.Message)
		for _, key := range []string{"formSnapshot", "conversationHistory", "derivedPreferences", "profileAnalysis", "topics"} {
			assert.Contains(t, raw.Context, key)
		}
		w.Write([]byte(`{"text":"ok"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", time.Second).Ask(context.Background(), Request{Message: "x"})
	require.NoError(t, err)
}

func TestClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", time.Second).Ask(context.Background(), Request{Message: "x"})
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadGateway, se.Status)
	assert.Contains(t, se.Body, "upstream down")
	assert.Equal(t, "status", Cause(err))
}

func TestClient_EmptyOrMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"text":`},
		{"empty text", `{"text":"   "}`},
		{"no text", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, "", time.Second).Ask(context.Background(), Request{Message: "x"})
			assert.ErrorIs(t, err, ErrEmptyReply)
			assert.Equal(t, "empty", Cause(err))
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	_, err := NewClient(srv.URL, "", 50*time.Millisecond).Ask(context.Background(), Request{Message: "x"})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, "timeout", Cause(err))
}

func TestClient_DropsEmptySuggestion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text":"ok","suggestion":{"fields":{},"confidence":0.9}}`))
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL, "", time.Second).Ask(context.Background(), Request{Message: "x"})
	require.NoError(t, err)
	assert.Nil(t, resp.Suggestion)
}

func TestNewClient_DefaultTimeout(t *testing.T) {
	c := NewClient("http://localhost", "", 0)
	assert.Equal(t, DefaultTimeout, c.timeout)
}
