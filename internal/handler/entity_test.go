package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/iliyamo/tourism-gateway/internal/model"
	"github.com/iliyamo/tourism-gateway/internal/queue"
	"github.com/iliyamo/tourism-gateway/internal/repository"
	"github.com/iliyamo/tourism-gateway/internal/testing/testdb"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.RowChanged
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.RowChanged) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func newTestHandler(t *testing.T) (*EntityHandler, *recordingPublisher) {
	t.Helper()
	pub := &recordingPublisher{}
	h := NewEntityHandler(repository.NewTableRepo(testdb.New(t)), pub, zaptest.NewLogger(t))
	return h, pub
}

// newContext builds a context for method and target whose wildcard param is
// rest, as the router would set it for "/<entity>/*".
func newContext(method, target, body, rest string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("*")
	c.SetParamValues(rest)
	return c, rec
}

func TestNewEntityHandler_PanicsWithoutRepo(t *testing.T) {
	assert.Panics(t, func() { NewEntityHandler(nil, nil, nil) })
}

func TestEntityHandler_GetFound(t *testing.T) {
	h, _ := newTestHandler(t)
	c, rec := newContext(http.MethodGet, "/destinations/1", "", "1")

	require.NoError(t, h.Get(model.Destinations)(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"DestinationID":1,"Name":"Kyoto","Country":"Japan","Description":"Temples and gardens"}`, rec.Body.String())
}

func TestEntityHandler_GetMissingIsNull(t *testing.T) {
	h, _ := newTestHandler(t)
	c, rec := newContext(http.MethodGet, "/customers/42", "", "42")

	require.NoError(t, h.Get(model.Customers)(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))
}

func TestEntityHandler_GetUsesLastSegment(t *testing.T) {
	h, _ := newTestHandler(t)
	c, rec := newContext(http.MethodGet, "/agents/x/2", "", "x/2")

	require.NoError(t, h.Get(model.Agents)(c))
	assert.Contains(t, rec.Body.String(), `"Name":"Tomas Berg"`)
}

func TestEntityHandler_CreatePublishesEvent(t *testing.T) {
	h, pub := newTestHandler(t)
	c, rec := newContext(http.MethodPost, "/agents/", `{"Name":"Mira","Email":"mira@example.com","Phone":"555-0103"}`, "")

	require.NoError(t, h.Create(model.CreateAgent)(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"message":"Data added successfully"}`, rec.Body.String())

	require.Len(t, pub.events, 1)
	ev := pub.events[0]
	assert.Equal(t, "agents", ev.Entity)
	assert.Equal(t, queue.OpCreate, ev.Operation)
	assert.Equal(t, "3", ev.Key)
	assert.Equal(t, "Mira", ev.Fields["Name"])
	assert.NotEmpty(t, ev.ID)
}

func TestEntityHandler_CreateMissingFieldSkipsInsert(t *testing.T) {
	h, pub := newTestHandler(t)
	c, _ := newContext(http.MethodPost, "/agents/", `{"Name":"Mira","Phone":"555"}`, "")

	err := h.Create(model.CreateAgent)(c)
	var missing *model.MissingFieldsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"Email"}, missing.Fields)
	assert.Empty(t, pub.events)
}

func TestEntityHandler_CreateEmptyBody(t *testing.T) {
	h, _ := newTestHandler(t)
	c, _ := newContext(http.MethodPost, "/bookings/", "", "")

	err := h.Create(model.CreateBooking)(c)
	status, msg := StatusOf(err)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Missing required fields: CustomerID, PackageID, TotalAmount, AgentID", msg)
}

func TestEntityHandler_CreateMalformedBody(t *testing.T) {
	h, _ := newTestHandler(t)
	c, _ := newContext(http.MethodPost, "/agents/", `{"Name":`, "")

	err := h.Create(model.CreateAgent)(c)
	status, msg := StatusOf(err)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid request body", msg)
}

func TestDecodeBody(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"object", `{"Status":"x"}`, false},
		{"trailing whitespace", "{\"Status\":\"x\"}\n\t ", false},
		{"empty", "", false},
		{"trailing garbage", `{"Status":"x"} garbage`, true},
		{"two objects", `{"Status":"x"}{"Status":"y"}`, true},
		{"not an object", `["Status"]`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newContext(http.MethodPut, "/bookings/1", tt.body, "1")
			_, err := decodeBody(c)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var ce *ClientError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, "Invalid request body", ce.Message)
		})
	}
}

func TestEntityHandler_UpdateNoMatchStillSucceeds(t *testing.T) {
	h, pub := newTestHandler(t)
	c, rec := newContext(http.MethodPut, "/bookings/77", `{"Status":"Confirmed"}`, "77")

	require.NoError(t, h.Update(model.UpdateBooking)(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Data updated successfully"}`, rec.Body.String())

	require.Len(t, pub.events, 1)
	assert.Equal(t, queue.OpUpdate, pub.events[0].Operation)
	assert.Equal(t, "77", pub.events[0].Key)
	assert.Zero(t, pub.events[0].Affected)
}

func TestEntityHandler_DeleteMissing(t *testing.T) {
	h, pub := newTestHandler(t)
	c, _ := newContext(http.MethodDelete, "/reviews/9", "", "9")

	err := h.Delete(model.Reviews)(c)
	status, msg := StatusOf(err)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Review not found", msg)
	assert.Empty(t, pub.events)
}

func TestEntityHandler_PublishFailureDoesNotFailRequest(t *testing.T) {
	h, pub := newTestHandler(t)
	pub.err = errors.New("broker down")
	c, rec := newContext(http.MethodDelete, "/transport/1", "", "1")

	require.NoError(t, h.Delete(model.Transport)(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Data deleted successfully"}`, rec.Body.String())
	assert.Len(t, pub.events, 1)
}

func TestEntityHandler_Unsupported(t *testing.T) {
	h, _ := newTestHandler(t)
	c, _ := newContext(http.MethodPut, "/customers/1", `{}`, "1")

	status, msg := StatusOf(h.Unsupported(http.MethodPut)(c))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid endpoint for PUT", msg)
}

func TestHealth(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/healthz", "", "")
	require.NoError(t, Health(c))
	assert.Equal(t, "ok", rec.Body.String())
}
