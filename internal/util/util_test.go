package util

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corp_edu_backend/internal/apperr"
	"corp_edu_backend/internal/llm"
	"corp_edu_backend/internal/model"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperr.Validation("bad"), http.StatusBadRequest},
		{apperr.ErrCourseNotFound, http.StatusNotFound},
		{apperr.Unauthorized("no"), http.StatusUnauthorized},
		{apperr.Forbidden("no"), http.StatusForbidden},
		{apperr.Conflict("dup"), http.StatusConflict},
		{apperr.Persistence("save", errors.New("db down")), http.StatusInternalServerError},
		{&llm.Error{Kind: llm.KindRateLimited}, http.StatusTooManyRequests},
		{&llm.Error{Kind: llm.KindInvalidOutput}, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusOf(tc.err), tc.err.Error())
	}
}

func TestHandleErrorHidesInternals(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	HandleError(c, apperr.Persistence("progress.save", errors.New("dial tcp 10.0.0.1:3306")))

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.NotContains(t, resp.Message, "10.0.0.1")
}

func TestJWTRoundTrip(t *testing.T) {
	u := &model.User{Email: "ana@corp.test", Role: model.RoleAdmin}
	u.ID = "u-1"
	token, err := GenerateJWT(u, "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, model.RoleAdmin, claims.Role)

	_, err = ParseJWT(token, "other")
	assert.Error(t, err)

	expired, _ := GenerateJWT(u, "secret", -time.Minute)
	_, err = ParseJWT(expired, "secret")
	assert.Error(t, err)
}

func TestParseProbeDuration(t *testing.T) {
	d, err := parseProbeDuration(`{"streams":[{"codec_type":"audio"},{"codec_type":"video"}],"format":{"duration":"61.2"}}`)
	require.NoError(t, err)
	assert.Equal(t, 62, d)

	_, err = parseProbeDuration(`{"streams":[{"codec_type":"audio"}],"format":{"duration":"3"}}`)
	assert.Error(t, err)
}

func TestHasExtension(t *testing.T) {
	assert.True(t, HasExtension("Intro.MP4", AllowedVideoExtensions))
	assert.False(t, HasExtension("intro.exe", AllowedVideoExtensions))
}
