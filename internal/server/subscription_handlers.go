package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/propertydesk/property-broker/constants"
	"github.com/propertydesk/property-broker/internal/subscription"
)

func (s *Server) handlePlans(c *gin.Context) {
	plans := make([]gin.H, 0, len(constants.PlanPrices))
	for _, plan := range []constants.PlanType{constants.PlanMonthly, constants.PlanQuarterly} {
		plans = append(plans, gin.H{
			"planType": plan,
			"price":    constants.PlanPrices[plan],
			"months":   constants.PlanMonths[plan],
		})
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

func (s *Server) handleCreateOrder(c *gin.Context) {
	var in struct {
		PlanType constants.PlanType `json:"planType" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, "plan type required")
		return
	}

	order, err := s.subSvc.CreateOrder(c.Request.Context(), currentUser(c).ID, in.PlanType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orderId":  order.ID,
		"amount":   order.Amount,
		"currency": order.Currency,
		"planType": in.PlanType,
	})
}

func (s *Server) handleVerifyPayment(c *gin.Context) {
	var in subscription.VerifyInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, "missing payment details")
		return
	}

	sub, err := s.subSvc.VerifyAndActivate(c.Request.Context(), currentUser(c).ID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "payment verified and subscription activated",
		"subscription": sub,
	})
}

func (s *Server) handleSubscriptionStatus(c *gin.Context) {
	sub, err := s.subSvc.Current(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"message":         "no active subscription found",
			"hasSubscription": false,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"hasSubscription": true,
		"subscription":    sub,
	})
}
