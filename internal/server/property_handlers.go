package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/propertydesk/property-broker/constants"
	"github.com/propertydesk/property-broker/internal/search"
)

func (s *Server) handleSearch(c *gin.Context) {
	var q search.Query
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	u := currentUser(c)

	res, err := s.searchSvc.Search(c.Request.Context(), u.ID, q)
	if err != nil {
		respondError(c, err)
		return
	}

	if u.Role != constants.RoleAdmin {
		for i := range res.Properties {
			res.Properties[i] = res.Properties[i].Redacted()
		}
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleGetProperty(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid property id")
		return
	}

	p, err := s.props.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	out := *p
	if currentUser(c).Role != constants.RoleAdmin {
		out = out.Redacted()
	}
	c.JSON(http.StatusOK, gin.H{"property": out})
}

func (s *Server) handlePropertyStats(c *gin.Context) {
	ctx := c.Request.Context()

	total, err := s.props.Count(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	areas, err := s.props.CountByArea(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"byArea": areas,
	})
}

// handleAdminSearch is the admin variant of search: no subscription
// gate and nothing redacted.
func (s *Server) handleAdminSearch(c *gin.Context) {
	var q search.Query
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	u := currentUser(c)

	res, err := s.searchSvc.Search(c.Request.Context(), u.ID, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleDeleteAllProperties(c *gin.Context) {
	n, err := s.props.DeleteAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "all properties deleted", "deleted": n})
}
