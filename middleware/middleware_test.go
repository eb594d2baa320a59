package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-ops/apperrors"
	"hotel-ops/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubLoader map[string]*models.Establishment

func (s stubLoader) GetEstablishment(_ context.Context, id string) (*models.Establishment, error) {
	if est, ok := s[id]; ok {
		return est, nil
	}
	return nil, apperrors.New(apperrors.CodeEstablishmentNotFound, "Établissement introuvable")
}

func newRouter(logger *logrus.Logger) *gin.Engine {
	est := &models.Establishment{Name: "Hôtel du Lac"}
	est.ID = "est-1"

	r := gin.New()
	r.Use(Logger(logger), Identity())
	r.GET("/establishments/:establishmentId", EstablishmentScope(stubLoader{"est-1": est}), func(c *gin.Context) {
		actor := CurrentActor(c)
		c.JSON(http.StatusOK, gin.H{
			"establishment": CurrentEstablishment(c).Name,
			"actor":         actor.ID,
			"actorName":     actor.Name,
		})
	})
	return r
}

func TestEstablishmentScopeAndIdentity(t *testing.T) {
	logger, hook := test.NewNullLogger()
	r := newRouter(logger)

	req := httptest.NewRequest(http.MethodGet, "/establishments/est-1", nil)
	req.Header.Set(HeaderUserID, " u-42 ")
	req.Header.Set(HeaderUserName, "Claire")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"establishment":"Hôtel du Lac","actor":"u-42","actorName":"Claire"}`, w.Body.String())

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "request handled", entry.Message)
	assert.Equal(t, "u-42", entry.Data["user_id"])
	assert.Equal(t, "est-1", entry.Data["establishment_id"])
}

func TestEstablishmentScopeRejectsUnknownID(t *testing.T) {
	logger, hook := test.NewNullLogger()
	r := newRouter(logger)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/establishments/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), string(apperrors.CodeEstablishmentNotFound))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.NotContains(t, entry.Data, "establishment_id")
}
