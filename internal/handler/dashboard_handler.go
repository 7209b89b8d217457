package handler

import (
	"net/http"
	"strconv"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
	db               *gorm.DB
}

func NewDashboardHandler(dashboardService service.DashboardService, db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, db: db}
}

func (h *DashboardHandler) RegisterRoutes(router *gin.RouterGroup) {
	dashboard := router.Group("/dashboard", middleware.RequireAuth(h.db))
	{
		dashboard.GET("/stats", h.GetStats)
		dashboard.GET("/by-category", h.GetByCategory)
		dashboard.GET("/by-company", h.GetByCompany)
		dashboard.GET("/by-department", h.GetByDepartment)
		dashboard.GET("/by-status", h.GetByStatus)
		dashboard.GET("/timeline", h.GetTimeline)
		dashboard.GET("/top-expenses", h.GetTopExpenses)
		dashboard.GET("/upcoming-renewals", h.GetUpcomingRenewals)
	}
}

// parseFilter reads the optional company/department dashboard filters. Scope
// validation happens in the service; the handler only parses.
func parseFilter(c *gin.Context) (service.DashboardFilter, bool) {
	var filter service.DashboardFilter
	if raw := c.Query("company_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid company_id"))
			return filter, false
		}
		filter.CompanyID = &id
	}
	if raw := c.Query("department_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid department_id"))
			return filter, false
		}
		filter.DepartmentID = &id
	}
	return filter, true
}

// GetStats returns the headline numbers for the caller's scope
// @Summary      Dashboard stats
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        company_id     query     string  false  "Filter by company"
// @Param        department_id  query     string  false  "Filter by department"
// @Success      200            {object}  response.Response
// @Failure      403            {object}  response.Response
// @Router       /dashboard/stats [get]
func (h *DashboardHandler) GetStats(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}

	stats, err := h.dashboardService.GetStats(c.Request.Context(), middleware.CurrentUser(c), filter)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}

// GetByCategory returns active expense totals grouped by category
// @Summary      Expenses by category
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Router       /dashboard/by-category [get]
func (h *DashboardHandler) GetByCategory(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}

	totals, err := h.dashboardService.GetByCategory(c.Request.Context(), middleware.CurrentUser(c), filter)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, totals))
}

// GetByCompany returns active expense totals grouped by company
// @Summary      Expenses by company
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Router       /dashboard/by-company [get]
func (h *DashboardHandler) GetByCompany(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}

	totals, err := h.dashboardService.GetByCompany(c.Request.Context(), middleware.CurrentUser(c), filter)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, totals))
}

// GetByDepartment returns active expense totals grouped by department
// @Summary      Expenses by department
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Router       /dashboard/by-department [get]
func (h *DashboardHandler) GetByDepartment(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}

	totals, err := h.dashboardService.GetByDepartment(c.Request.Context(), middleware.CurrentUser(c), filter)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, totals))
}

// GetByStatus returns one month's validation status distribution
// @Summary      Validations by status
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        month  query     string  false  "Target month (YYYY-MM, default current)"
// @Success      200    {object}  response.Response
// @Router       /dashboard/by-status [get]
func (h *DashboardHandler) GetByStatus(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}
	month, ok := parseMonth(c, "month")
	if !ok {
		return
	}

	counts, err := h.dashboardService.GetByStatus(c.Request.Context(), middleware.CurrentUser(c), filter, month)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, counts))
}

// GetTimeline returns the monthly spending series
// @Summary      Spending timeline
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        months  query     int  false  "Number of months (default 6, max 24)"
// @Success      200     {object}  response.Response
// @Router       /dashboard/timeline [get]
func (h *DashboardHandler) GetTimeline(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}
	months, _ := strconv.Atoi(c.DefaultQuery("months", "6"))

	points, err := h.dashboardService.GetTimeline(c.Request.Context(), middleware.CurrentUser(c), filter, months)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, points))
}

// GetTopExpenses returns the largest active expenses in scope
// @Summary      Top expenses
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Ranking size (default 10, max 50)"
// @Success      200    {object}  response.Response
// @Router       /dashboard/top-expenses [get]
func (h *DashboardHandler) GetTopExpenses(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	top, err := h.dashboardService.GetTopExpenses(c.Request.Context(), middleware.CurrentUser(c), filter, limit)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, top))
}

// GetUpcomingRenewals returns recurring expenses renewing soon
// @Summary      Upcoming renewals
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        months_ahead  query     int  false  "Look-ahead window in months (default 3, max 12)"
// @Success      200           {object}  response.Response
// @Router       /dashboard/upcoming-renewals [get]
func (h *DashboardHandler) GetUpcomingRenewals(c *gin.Context) {
	monthsAhead, _ := strconv.Atoi(c.DefaultQuery("months_ahead", "3"))

	renewals, err := h.dashboardService.GetUpcomingRenewals(c.Request.Context(), middleware.CurrentUser(c), monthsAhead)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, renewals))
}
