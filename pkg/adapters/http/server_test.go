package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steltz/stepper/internal/runtime"
	"github.com/steltz/stepper/pkg/adapters/memory"
	"github.com/steltz/stepper/pkg/catalog"
	"github.com/steltz/stepper/pkg/completion"
	"github.com/steltz/stepper/pkg/domain"
	"github.com/steltz/stepper/pkg/session"
)

const iphoneUA = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 Mobile/15E148"

type fixture struct {
	handler  http.Handler
	sink     *memory.Sink
	notifier *completion.Notifier
}

func newFixture(t *testing.T, opts ...Option) fixture {
	t.Helper()
	c := catalog.MustNew(
		domain.TextQuestion{Base: domain.Base{ID: "name", Text: "Name?", Position: 1, Required: true}},
		domain.YesNoQuestion{Base: domain.Base{ID: "rsvp", Text: "Coming?", Position: 2, Required: true}},
	)
	sink := memory.NewSink()
	n := completion.NewNotifier(sink)
	mgr := session.NewManager(runtime.NewEngine(c), memory.NewStore(), session.WithNotifier(n))
	opts = append([]Option{WithCatalog(c.Views())}, opts...)
	return fixture{handler: NewHandler(mgr, opts...), sink: sink, notifier: n}
}

func (f fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("User-Agent", iphoneUA)
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder) sessionResponse {
	t.Helper()
	var resp sessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func TestServer_SurveyScenario(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, "POST", "/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeView(t, w)
	require.NotEmpty(t, created.SessionID)
	assert.Equal(t, "name", created.Question.ID)
	assert.Equal(t, domain.Progress{Current: 1, Total: 2}, created.Progress)
	assert.False(t, created.CanGoBack)
	assert.Empty(t, created.Error)

	actions := "/sessions/" + created.SessionID + "/actions"

	w = f.do(t, "POST", actions, actionRequest{Type: "set_answer", Value: "Ada"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeView(t, w).CanGoNext)

	w = f.do(t, "POST", actions, actionRequest{Type: "next"})
	require.Equal(t, http.StatusOK, w.Code)
	view := decodeView(t, w)
	assert.Equal(t, "rsvp", view.Question.ID)
	assert.Equal(t, domain.DirectionForward, view.State.Transition)
	assert.True(t, view.IsLast)

	w = f.do(t, "POST", actions, actionRequest{Type: "set_answer", Value: "maybe"})
	view = decodeView(t, w)
	assert.Equal(t, "Please select Yes or No", view.Error)
	assert.False(t, view.CanSubmit)

	f.do(t, "POST", actions, actionRequest{Type: "set_answer", Value: "Yes"})
	w = f.do(t, "POST", actions, actionRequest{Type: "submit"})
	require.Equal(t, http.StatusOK, w.Code)
	view = decodeView(t, w)
	assert.True(t, view.State.IsComplete)
	assert.False(t, view.CanSubmit)

	require.NoError(t, f.notifier.Wait(context.Background()))
	subs := f.sink.Submissions()
	require.Len(t, subs, 1)
	assert.Equal(t, map[string]string{"name": "Ada", "rsvp": "Yes"}, subs[0].Answers)

	w = f.do(t, "DELETE", "/sessions/"+created.SessionID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = f.do(t, "GET", "/sessions/"+created.SessionID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_Errors(t *testing.T) {
	f := newFixture(t)
	created := decodeView(t, f.do(t, "POST", "/sessions", nil))
	actions := "/sessions/" + created.SessionID + "/actions"

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"unknown session", "GET", "/sessions/nope", nil, http.StatusNotFound},
		{"unknown session action", "POST", "/sessions/nope/actions", actionRequest{Type: "next"}, http.StatusNotFound},
		{"delete unknown session", "DELETE", "/sessions/nope", nil, http.StatusNotFound},
		{"unknown action", "POST", actions, actionRequest{Type: "jump"}, http.StatusBadRequest},
		{"oversized answer", "POST", actions, actionRequest{Type: "set_answer", Value: strings.Repeat("a", 5000)}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		})
	}

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest("POST", actions, strings.NewReader("{"))
		w := httptest.NewRecorder()
		f.handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestServer_ControlCharactersStripped(t *testing.T) {
	f := newFixture(t)
	created := decodeView(t, f.do(t, "POST", "/sessions", nil))

	w := f.do(t, "POST", "/sessions/"+created.SessionID+"/actions", actionRequest{Type: "set_answer", Value: "Ad\x00a"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ada", decodeView(t, w).CurrentAnswer)
}

func TestServer_CatalogAndInfo(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, "GET", "/catalog", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var questions []domain.QuestionView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &questions))
	require.Len(t, questions, 2)
	assert.Equal(t, []string{"Yes", "No"}, questions[1].Options)

	w = f.do(t, "GET", "/info", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var info map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "1.0.0", info["api_version"])

	w = f.do(t, "GET", "/health", nil)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = f.do(t, "GET", "/metrics", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "metrics are only mounted when configured")
}

func TestServer_Metrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("stepper_up 1\n"))
	})
	f := newFixture(t, WithMetrics(metrics))

	w := f.do(t, "GET", "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "stepper_up")
}

func TestServer_CORS(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest("OPTIONS", "/sessions", nil)
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSubscribeEvents_Session(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.handler)
	defer srv.Close()

	created := decodeView(t, f.do(t, "POST", "/sessions", nil))
	id := created.SessionID

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/sessions/"+id+"/events", nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", iphoneUA)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := bufio.NewReader(resp.Body)
	nextView := func() string {
		t.Helper()
		for {
			line, err := events.ReadString('\n')
			require.NoError(t, err)
			if strings.HasPrefix(line, "event: view") {
				data, err := events.ReadString('\n')
				require.NoError(t, err)
				return strings.TrimPrefix(strings.TrimSpace(data), "data: ")
			}
		}
	}

	var first sessionResponse
	require.NoError(t, json.Unmarshal([]byte(nextView()), &first))
	assert.Equal(t, id, first.SessionID)
	assert.Empty(t, first.CurrentAnswer)

	w := f.do(t, "POST", "/sessions/"+id+"/actions", actionRequest{Type: "set_answer", Value: "Ada"})
	require.Equal(t, http.StatusOK, w.Code)

	var update sessionResponse
	require.NoError(t, json.Unmarshal([]byte(nextView()), &update))
	assert.Equal(t, "Ada", update.CurrentAnswer)
}

func TestSubscribeEvents_UnknownSession(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, "GET", "/sessions/nope/events", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStreamManager_Unsubscribe(t *testing.T) {
	sm := NewStreamManager()
	ch, cancel := sm.Subscribe("s1")
	assert.Equal(t, 1, sm.Subscribers("s1"))

	sm.Broadcast("s1", "hello")
	assert.Equal(t, "hello", <-ch)

	cancel()
	assert.Zero(t, sm.Subscribers("s1"))
	_, open := <-ch
	assert.False(t, open)
}

// interleavingSessions applies a second action right after every dispatch,
// the way a concurrent request on the same session could.
type interleavingSessions struct {
	*session.Manager
	then domain.Action
}

func (s interleavingSessions) Dispatch(ctx context.Context, id string, action domain.Action) (domain.FormState, error) {
	state, err := s.Manager.Dispatch(ctx, id, action)
	if err != nil {
		return state, err
	}
	_, _ = s.Manager.Dispatch(ctx, id, s.then)
	return state, nil
}

func TestDispatchAction_ViewMatchesDispatchedState(t *testing.T) {
	c := catalog.MustNew(
		domain.TextQuestion{Base: domain.Base{ID: "name", Text: "Name?", Position: 1, Required: true}},
	)
	mgr := session.NewManager(runtime.NewEngine(c), memory.NewStore())
	f := fixture{handler: NewHandler(interleavingSessions{Manager: mgr, then: domain.SetAnswer{Value: "Grace"}})}

	created := decodeView(t, f.do(t, "POST", "/sessions", nil))
	w := f.do(t, "POST", "/sessions/"+created.SessionID+"/actions", actionRequest{Type: "set_answer", Value: "Ada"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Ada", decodeView(t, w).CurrentAnswer)

	w = f.do(t, "GET", "/sessions/"+created.SessionID, nil)
	assert.Equal(t, "Grace", decodeView(t, w).CurrentAnswer)
}
