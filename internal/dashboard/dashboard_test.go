package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"Plant3D/internal/auth"
	"Plant3D/internal/equipment"
	"Plant3D/internal/observability"
	"Plant3D/internal/review"
)

type fakeReviews map[uuid.UUID]review.Review

func (f fakeReviews) GetReview(_ context.Context, id uuid.UUID) (review.Review, error) {
	r, ok := f[id]
	if !ok {
		return review.Review{}, review.ErrNotFound
	}
	return r, nil
}

func startServer(t *testing.T, reviews ReviewSource) (*httptest.Server, *observability.Metrics) {
	t.Helper()
	m := observability.NewMetricsForTesting()
	srv := NewServer(websocket.Upgrader{}, equipment.DefaultFallbacks(), reviews, zap.NewNop(), m)
	ts := httptest.NewServer(asUser(srv))
	t.Cleanup(ts.Close)
	return ts, m
}

// asUser signs the request in as the user named by the X-User header.
func asUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, err := strconv.Atoi(r.Header.Get("X-User")); err == nil {
			r = r.WithContext(auth.WithUser(r.Context(), id, "user"+strconv.Itoa(id)))
		}
		next.ServeHTTP(w, r)
	})
}

func wsURL(ts *httptest.Server, query string) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws" + query
}

func dial(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	return dialAs(t, ts, query, nil)
}

func dialAs(t *testing.T, ts *httptest.Server, query string, header http.Header) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, query), header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, msg Msg) Msg {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
	var reply Msg
	require.NoError(t, conn.ReadJSON(&reply))
	return reply
}

func TestScenarioOutcome(t *testing.T) {
	ts, m := startServer(t, nil)
	conn := dial(t, ts, "")

	reply := roundTrip(t, conn, Msg{Type: TypeScenario, Content: `{"blockage_pct":50}`})
	require.Equal(t, TypeOutcome, reply.Type, reply.Content)

	var out review.Outcome
	require.NoError(t, json.Unmarshal([]byte(reply.Content), &out))
	assert.InDelta(t, 40.0, out.Blockage.InletVelocity, 1e-9)
	assert.Equal(t, "caution", out.Risk.Band)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScenariosEvaluated.WithLabelValues("caution")))
}

func TestBaselineThenScenarioThenReset(t *testing.T) {
	ts, _ := startServer(t, nil)
	conn := dial(t, ts, "")

	reply := roundTrip(t, conn, Msg{Type: TypeBaseline, Content: `{"flow_rate":1000,"inlet_velocity":18}`})
	require.Equal(t, TypeBaselineSet, reply.Type)
	var set BaselineReply
	require.NoError(t, json.Unmarshal([]byte(reply.Content), &set))
	assert.Equal(t, 1000.0, set.Baseline.FlowRate)
	assert.NotEmpty(t, set.Warnings)

	reply = roundTrip(t, conn, Msg{Type: TypeScenario})
	var out review.Outcome
	require.NoError(t, json.Unmarshal([]byte(reply.Content), &out))
	assert.Equal(t, 1000.0, out.Scenario.FlowRate)
	assert.InDelta(t, 18.0, out.Flow.InletVelocity, 1e-9)

	reply = roundTrip(t, conn, Msg{Type: TypeReset})
	require.NoError(t, json.Unmarshal([]byte(reply.Content), &set))
	assert.Equal(t, 671.0, set.Baseline.FlowRate)
}

func TestErrorReplies(t *testing.T) {
	ts, _ := startServer(t, nil)
	conn := dial(t, ts, "")

	reply := roundTrip(t, conn, Msg{Type: "start"})
	assert.Equal(t, TypeError, reply.Type)
	assert.Contains(t, reply.Content, "unknown message type")

	reply = roundTrip(t, conn, Msg{Type: TypeScenario, Content: `{"blockage_pct":100}`})
	assert.Equal(t, TypeError, reply.Type)
	assert.Contains(t, reply.Content, "blockage_pct")

	reply = roundTrip(t, conn, Msg{Type: TypeScenario, Content: `not json`})
	assert.Equal(t, TypeError, reply.Type)
}

func getAs(t *testing.T, ts *httptest.Server, query, user string) int {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, ts.URL+"/ws"+query, nil)
	require.NoError(t, err)
	if user != "" {
		req.Header.Set("X-User", user)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestSessionSeededFromReview(t *testing.T) {
	rev := review.Review{ID: uuid.New(), OwnerID: 42}
	rev.Baseline, _ = equipment.Resolve(equipment.Parameters{FlowRate: equipment.Float(900)}, equipment.DefaultFallbacks())
	ts, _ := startServer(t, fakeReviews{rev.ID: rev})

	conn := dialAs(t, ts, "?review="+rev.ID.String(), http.Header{"X-User": {"42"}})
	reply := roundTrip(t, conn, Msg{Type: TypeScenario})
	var out review.Outcome
	require.NoError(t, json.Unmarshal([]byte(reply.Content), &out))
	assert.Equal(t, 900.0, out.Scenario.FlowRate)

	assert.Equal(t, http.StatusNotFound, getAs(t, ts, "?review="+uuid.NewString(), "42"))
	assert.Equal(t, http.StatusBadRequest, getAs(t, ts, "?review=nope", "42"))
}

func TestSeedingRequiresOwner(t *testing.T) {
	rev := review.Review{ID: uuid.New(), OwnerID: 42}
	rev.Params.TagNumber = "SECRET-TAG-1"
	rev.Baseline, _ = equipment.Resolve(rev.Params, equipment.DefaultFallbacks())
	ts, m := startServer(t, fakeReviews{rev.ID: rev})
	query := "?review=" + rev.ID.String()

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, query), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(wsURL(ts, query), http.Header{"X-User": {"7"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	assert.Equal(t, 0.0, testutil.ToFloat64(m.DashboardSessions))
}
