package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newAuthRouter(agentKey string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	r.GET("/actor", Actor(), func(c *gin.Context) {
		c.String(http.StatusOK, ActorFrom(c))
	})
	r.GET("/agent", AgentKey(agentKey), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func TestActor(t *testing.T) {
	r := newAuthRouter("secret")

	t.Run("Missing header is rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/actor", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Actor is passed through to the handler", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/actor", nil)
		req.Header.Set(ActorHeader, "gate-operator")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "gate-operator", w.Body.String())
	})
}

func TestAgentKey(t *testing.T) {
	t.Run("Correct key is accepted", func(t *testing.T) {
		r := newAuthRouter("secret")
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/agent", nil)
		req.Header.Set(AgentKeyHeader, "secret")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Wrong key is rejected", func(t *testing.T) {
		r := newAuthRouter("secret")
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/agent", nil)
		req.Header.Set(AgentKeyHeader, "guess")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Empty configured key locks the endpoint", func(t *testing.T) {
		r := newAuthRouter("")
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/agent", nil)
		req.Header.Set(AgentKeyHeader, "")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
