package api

import (
	"net/http"
	"time"
)

const timeoutBody = `{"response":{"message":"request timeout","error":"the request took too long to process"}}`

// TimeoutMiddleware bounds every request to timeout. The handler's context is
// cancelled at the deadline and the client gets a 503 with a JSON body.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, timeoutBody)
	}
}
