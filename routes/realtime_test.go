package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"djagency-backend/services"
)

// streamRecorder adds the CloseNotify gin's Stream requires
type streamRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func (r *streamRecorder) CloseNotify() <-chan bool {
	return r.closed
}

func TestStreamChanges(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/realtime", s.producerToken, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/realtime?tables=profiles", s.adminToken, nil).Code)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/realtime?tables=payments", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer "+s.adminToken)
	w := &streamRecorder{ResponseRecorder: httptest.NewRecorder(), closed: make(chan bool, 1)}

	done := make(chan struct{})
	go func() {
		s.router.ServeHTTP(w, req)
		close(done)
	}()

	require.Eventually(t, func() bool { return s.hub.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
	s.hub.Publish(ctx, "djs", services.ChangeInsert, map[string]string{"artist_name": "Ignorado"})
	s.hub.Publish(ctx, "payments", services.ChangeUpdate, map[string]string{"status": "paid"})
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop after the client left")
	}

	body := w.Body.String()
	assert.Contains(t, w.Header().Get("Content-Type"), "text/event-stream")
	assert.Contains(t, body, "event:ready")
	assert.Contains(t, body, "event:change")
	assert.Contains(t, body, `"status":"paid"`)
	assert.NotContains(t, body, "Ignorado")
	assert.Zero(t, s.hub.Subscribers())
}
