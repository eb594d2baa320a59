package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"hotel-ops/models"
	"hotel-ops/utils"
)

const establishmentKey = "establishment"

// EstablishmentLoader loads an establishment by id.
type EstablishmentLoader interface {
	GetEstablishment(ctx context.Context, id string) (*models.Establishment, error)
}

// EstablishmentScope resolves the :establishmentId path parameter and stores
// the establishment on the context. Unknown ids abort the request.
func EstablishmentScope(loader EstablishmentLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		est, err := loader.GetEstablishment(c.Request.Context(), c.Param("establishmentId"))
		if err != nil {
			utils.RespondError(c, err)
			c.Abort()
			return
		}
		c.Set(establishmentKey, est)
		c.Next()
	}
}

// EstablishmentFrom returns the establishment stored by EstablishmentScope.
func EstablishmentFrom(c *gin.Context) (*models.Establishment, bool) {
	v, ok := c.Get(establishmentKey)
	if !ok {
		return nil, false
	}
	est, ok := v.(*models.Establishment)
	return est, ok
}

// CurrentEstablishment returns the scoped establishment. Handlers mounted
// under EstablishmentScope can rely on it being set.
func CurrentEstablishment(c *gin.Context) *models.Establishment {
	est, _ := EstablishmentFrom(c)
	return est
}
