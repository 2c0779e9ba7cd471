package server

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/propertydesk/property-broker/constants"
)

func (s *Server) handleUploadPDF(c *gin.Context) {
	file, err := c.FormFile("pdf")
	if err != nil {
		respondBadRequest(c, "no file uploaded")
		return
	}
	if file.Size > constants.MaxUploadBytes {
		respondBadRequest(c, "pdf exceeds the upload size limit")
		return
	}
	ext := constants.NormalizeExt(filepath.Ext(file.Filename))
	if !constants.IsAllowedExt(ext) {
		respondBadRequest(c, "only pdf files are accepted")
		return
	}

	if err := os.MkdirAll(s.cfg.Ingest.UploadDir, 0o755); err != nil {
		respondError(c, err)
		return
	}
	stored := filepath.Join(s.cfg.Ingest.UploadDir, fmt.Sprintf("%s-%s", uuid.NewString(), filepath.Base(file.Filename)))
	if err := c.SaveUploadedFile(file, stored); err != nil {
		respondError(c, err)
		return
	}

	data, err := os.ReadFile(stored)
	if err != nil {
		respondError(c, err)
		return
	}

	res, err := s.ingestSvc.IngestPDF(c.Request.Context(), data, file.Filename)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "pdf processed",
		"result":  res,
	})
}

func (s *Server) handleListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	search := c.Query("search")

	users, total, err := s.users.List(c.Request.Context(), search, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

func (s *Server) handleListSubscriptions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	status := c.Query("status")

	subs, total, err := s.subsRepo.List(c.Request.Context(), status, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"subscriptions": subs,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

func (s *Server) handleDashboardStats(c *gin.Context) {
	ctx := c.Request.Context()
	now := time.Now()

	totalUsers, err := s.users.CountBrokers(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	totalProperties, err := s.props.Count(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	activeSubs, err := s.subsRepo.CountActive(ctx, now)
	if err != nil {
		respondError(c, err)
		return
	}
	expiredSubs, err := s.subsRepo.CountExpired(ctx, now)
	if err != nil {
		respondError(c, err)
		return
	}
	revenue, err := s.subsRepo.RevenueActive(ctx, now)
	if err != nil {
		respondError(c, err)
		return
	}
	recent, err := s.users.RecentBrokers(ctx, 5)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats": gin.H{
			"totalUsers":          totalUsers,
			"totalProperties":     totalProperties,
			"activeSubscriptions": activeSubs,
			"expiredSubscriptions": expiredSubs,
			"totalRevenue":        revenue,
		},
		"recentUsers": recent,
	})
}

func (s *Server) handleSearchStatistics(c *gin.Context) {
	since := time.Now().AddDate(0, 0, -30)
	areas, err := s.logs.TopAreas(c.Request.Context(), since, 10)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"since":    since.Format("2006-01-02"),
		"topAreas": areas,
	})
}

func (s *Server) handleUsersReport(c *gin.Context) {
	data, err := s.exportSvc.ExportUsersXLSX(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	sendXLSX(c, "users-report.xlsx", data)
}

func (s *Server) handleSubscriptionsReport(c *gin.Context) {
	data, err := s.exportSvc.ExportSubscriptionsXLSX(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	sendXLSX(c, "subscriptions-report.xlsx", data)
}

func (s *Server) handlePropertiesReport(c *gin.Context) {
	data, err := s.exportSvc.ExportPropertiesXLSX(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	sendXLSX(c, "properties-report.xlsx", data)
}

func sendXLSX(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
