package httputil

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(t *testing.T, fn gin.HandlerFunc) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	fn(c)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestRespondWithError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   errors.ErrorCode
	}{
		{"slot taken", errors.SlotTaken(nil), http.StatusConflict, errors.ErrSlotTaken},
		{"forbidden", errors.Forbidden("nope"), http.StatusForbidden, errors.ErrAuthorizationDenied},
		{"not found", errors.NotFound("appointment", nil), http.StatusNotFound, errors.ErrNotFound},
		{"plain error", stderrors.New("db down"), http.StatusInternalServerError, errors.ErrInternal},
		{"expired deadline", errors.Internal(fmt.Errorf("failed to list appointments: %w", context.DeadlineExceeded)),
			http.StatusGatewayTimeout, errors.ErrTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := perform(t, func(c *gin.Context) { RespondWithError(c, tt.err) })
			assert.Equal(t, tt.status, w.Code)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestRespondWithMessage(t *testing.T) {
	w, resp := perform(t, func(c *gin.Context) {
		RespondWithMessage(c, "Doctor is not available on this day.", []string{})
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, "Doctor is not available on this day.", resp.Message)
}
