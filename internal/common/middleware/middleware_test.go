package middleware

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advent-raffle-backend/internal/common/errors"
)

func newEngine(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := zerolog.Nop()
	r := gin.New()
	r.Use(RequestID(), Recovery(log), ErrorHandler(log), BearerToken())
	r.GET("/", handler)
	return r
}

func serve(r *gin.Engine, header ...string) (*httptest.ResponseRecorder, ErrorResponse) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	var body ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func TestErrorHandler_RendersAppError(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		_ = c.Error(errors.New(errors.ErrCodeDoorNotYetOpen, "door 9 opens on day 9").WithDetail("door", 9))
	})

	rec, body := serve(r)
	assert.Equal(t, http.StatusTooEarly, rec.Code)
	assert.False(t, body.Success)
	require.NotNil(t, body.Error)
	assert.Equal(t, errors.ErrCodeDoorNotYetOpen, body.Error.Code)
	assert.EqualValues(t, 9, body.Error.Details["door"])
	assert.NotEmpty(t, body.RequestID)
	assert.Equal(t, body.RequestID, body.Error.RequestID)
}

func TestErrorHandler_WrapsForeignErrors(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		_ = c.Error(stderrors.New("boom"))
	})

	rec, body := serve(r)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, errors.ErrCodeInternal, body.Error.Code)
	assert.NotContains(t, rec.Body.String(), "boom", "causes are not exposed")
}

func TestErrorHandler_KeepsWrittenResponses(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		c.String(http.StatusAccepted, "done")
		_ = c.Error(stderrors.New("late"))
	})

	rec, _ := serve(r)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "done", rec.Body.String())
}

func TestRecovery(t *testing.T) {
	r := newEngine(func(c *gin.Context) { panic("nil map") })

	rec, body := serve(r, RequestIDHeader, "abc")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, errors.ErrCodeInternal, body.Error.Code)
	assert.Equal(t, "abc", body.RequestID)
	assert.Nil(t, body.Error.Details, "panic values stay in the log")
}

func TestBearerToken(t *testing.T) {
	var got string
	r := newEngine(func(c *gin.Context) {
		got = GetBearerToken(c)
		c.Status(http.StatusNoContent)
	})

	cases := map[string]string{
		"Bearer s3cret":  "s3cret",
		"bearer s3cret ": "s3cret",
		"Basic s3cret":   "",
		"s3cret":         "",
		"":               "",
	}
	for header, want := range cases {
		got = "unset"
		serve(r, "Authorization", header)
		assert.Equal(t, want, got, "header %q", header)
	}
}
