package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AlertHandler struct {
	alertService service.AlertService
	db           *gorm.DB
}

func NewAlertHandler(alertService service.AlertService, db *gorm.DB) *AlertHandler {
	return &AlertHandler{alertService: alertService, db: db}
}

func (h *AlertHandler) RegisterRoutes(router *gin.RouterGroup) {
	alerts := router.Group("/alerts", middleware.RequireAuth(h.db))
	{
		alerts.GET("", h.ListAlerts)
		alerts.GET("/unread-count", h.CountUnread)
		alerts.POST("/:id/read", h.MarkRead)
	}
}

// ListAlerts returns the caller's alerts, newest first
// @Summary      List alerts
// @Tags         alerts
// @Produce      json
// @Security     BearerAuth
// @Param        unread  query     bool  false  "Only unread alerts"
// @Success      200     {object}  response.Response
// @Router       /alerts [get]
func (h *AlertHandler) ListAlerts(c *gin.Context) {
	p := pagination.Parse(c)
	onlyUnread := c.Query("unread") == "true"

	alerts, total, err := h.alertService.ListAlerts(c.Request.Context(), middleware.CurrentUser(c), onlyUnread, p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch alerts"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, pagination.NewPage(alerts, total, p)))
}

// CountUnread returns the caller's unread alert count
// @Summary      Unread alert count
// @Tags         alerts
// @Produce      json
// @Security     BearerAuth
// @Param        company_id  query     string  false  "Count only alerts for this company's expenses"
// @Success      200         {object}  response.Response
// @Router       /alerts/unread-count [get]
func (h *AlertHandler) CountUnread(c *gin.Context) {
	var companyID *uuid.UUID
	if raw := c.Query("company_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid company_id"))
			return
		}
		companyID = &id
	}

	count, err := h.alertService.CountUnread(c.Request.Context(), middleware.CurrentUser(c), companyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to count alerts"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"unread": count}))
}

// MarkRead handles POST /alerts/:id/read
// @Summary      Mark alert read
// @Tags         alerts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Alert ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /alerts/{id}/read [post]
func (h *AlertHandler) MarkRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid alert ID"))
		return
	}

	alert, err := h.alertService.MarkRead(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, alert))
}
