package requesttime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMiddleware_PinsTimeForRequest(t *testing.T) {
	var first, second time.Time
	handler := Middleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		first = Now(r.Context())
		time.Sleep(time.Millisecond)
		second = Now(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/credentials", nil))

	assert.False(t, first.IsZero())
	assert.Equal(t, first, second)
}

func TestWithTime(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, fixed, Now(WithTime(context.Background(), fixed)))
	assert.WithinDuration(t, time.Now(), Now(context.Background()), time.Second)
}
