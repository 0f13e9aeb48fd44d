package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func TestSuccessWritesEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("request_id", "req-1")

	resp := Success(c, http.StatusCreated, map[string]string{"name": "Flour"}, "created", PageMeta{Limit: 10, Total: 1})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, http.StatusCreated, resp.Status)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "req-1", body["request_id"])
	assert.Equal(t, "Flour", body["data"].(map[string]any)["name"])
	assert.EqualValues(t, 1, body["meta"].(map[string]any)["total"])
	assert.NotContains(t, body, "error")
}

func TestErrorAborts(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error[any](c, 0, "bad", map[string]string{"name": "is required"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, c.IsAborted())

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "is required", body["error"].(map[string]any)["name"])
}
