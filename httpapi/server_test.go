package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielbahrami/SE08-SP/dispatch"
	"github.com/danielbahrami/SE08-SP/fsm"
	"github.com/danielbahrami/SE08-SP/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLock struct {
	snapshot  fsm.Snapshot
	submitted []string
	err       error
}

func (f *fakeLock) Snapshot() fsm.Snapshot { return f.snapshot }

func (f *fakeLock) Submit(command string) error {
	f.submitted = append(f.submitted, command)
	return f.err
}

func TestGetState(t *testing.T) {
	lock := &fakeLock{snapshot: fsm.Snapshot{State: state.Error, ErrorCondition: "err-mqtt", ErrorActive: true}}
	router := NewServer(":0", lock).Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/state", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body stateResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, stateResponse{State: "ERROR", ErrorCondition: "err-mqtt", Color: [3]int{255, 0, 0}}, body)
}

func TestPostCommand(t *testing.T) {
	lock := &fakeLock{}
	router := NewServer(":0", lock).Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/commands/open", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, []string{"open"}, lock.submitted)
}

func TestPostCommandAfterShutdown(t *testing.T) {
	lock := &fakeLock{err: dispatch.ErrChannelClosed}
	router := NewServer(":0", lock).Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/commands/close", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	router := NewServer(":0", &fakeLock{}).Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/commands/open", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
