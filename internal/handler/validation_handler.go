package handler

import (
	"net/http"
	"time"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ValidationHandler struct {
	validationService service.ValidationService
	db                *gorm.DB
}

func NewValidationHandler(validationService service.ValidationService, db *gorm.DB) *ValidationHandler {
	return &ValidationHandler{validationService: validationService, db: db}
}

func (h *ValidationHandler) RegisterRoutes(router *gin.RouterGroup) {
	adminOnly := middleware.RequireRole(model.RoleSystemAdmin, model.RoleFinanceAdmin)

	validations := router.Group("/validations", middleware.RequireAuth(h.db))
	{
		validations.GET("/pending", h.GetPending)
		validations.GET("/history", h.GetHistory)
		validations.GET("/predicted", h.GetPredicted)
		validations.GET("/:id", h.GetByID)
		validations.POST("/:id/approve", h.Approve)
		validations.POST("/:id/reject", h.Reject)

		// Batch entry points, normally driven by the scheduler
		validations.POST("/create-monthly", adminOnly, h.CreateMonthly)
		validations.POST("/mark-overdue", adminOnly, h.MarkOverdue)
	}
}

// parseMonth reads an optional YYYY-MM query parameter.
func parseMonth(c *gin.Context, key string) (*time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid "+key+", expected YYYY-MM"))
		return nil, false
	}
	return &t, true
}

// GetPending lists PENDING and OVERDUE validations in the caller's scope
// @Summary      List pending validations
// @Tags         validations
// @Produce      json
// @Security     BearerAuth
// @Param        month  query     string  false  "Validation month (YYYY-MM)"
// @Success      200    {object}  response.Response
// @Router       /validations/pending [get]
func (h *ValidationHandler) GetPending(c *gin.Context) {
	month, ok := parseMonth(c, "month")
	if !ok {
		return
	}

	validations, err := h.validationService.GetPending(c.Request.Context(), middleware.CurrentUser(c), month)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, validations))
}

// GetHistory lists resolved and unresolved validations with filters
// @Summary      Validation history
// @Tags         validations
// @Produce      json
// @Security     BearerAuth
// @Param        status      query     string  false  "Filter by status"
// @Param        month       query     string  false  "Validation month (YYYY-MM)"
// @Param        expense_id  query     string  false  "Filter by expense"
// @Success      200         {object}  response.Response
// @Failure      403         {object}  response.Response
// @Router       /validations/history [get]
func (h *ValidationHandler) GetHistory(c *gin.Context) {
	month, ok := parseMonth(c, "month")
	if !ok {
		return
	}

	filter := repository.ValidationFilter{
		Status: c.Query("status"),
		Month:  month,
	}
	if raw := c.Query("expense_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid expense_id"))
			return
		}
		filter.ExpenseID = &id
	}

	validations, err := h.validationService.GetHistory(c.Request.Context(), middleware.CurrentUser(c), filter)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, validations))
}

// GetPredicted projects the validations a future month would create
// @Summary      Predict future validations
// @Description  Read-only projection for a strictly future month; nothing is persisted
// @Tags         validations
// @Produce      json
// @Security     BearerAuth
// @Param        month  query     string  true  "Target month (YYYY-MM)"
// @Success      200    {object}  response.Response
// @Failure      400    {object}  response.Response
// @Router       /validations/predicted [get]
func (h *ValidationHandler) GetPredicted(c *gin.Context) {
	month, ok := parseMonth(c, "month")
	if !ok {
		return
	}
	if month == nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "month is required"))
		return
	}

	predicted, err := h.validationService.Predict(c.Request.Context(), middleware.CurrentUser(c), *month)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, predicted))
}

// GetByID handles GET /validations/:id
// @Summary      Get validation by ID
// @Tags         validations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Validation ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /validations/{id} [get]
func (h *ValidationHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid validation ID"))
		return
	}

	validation, err := h.validationService.GetByID(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, validation))
}

// Approve resolves a PENDING or OVERDUE validation as approved
// @Summary      Approve validation
// @Tags         validations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Validation ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /validations/{id}/approve [post]
func (h *ValidationHandler) Approve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid validation ID"))
		return
	}

	validation, err := h.validationService.Approve(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, validation))
}

// Reject resolves a validation as rejected and cancels the parent expense
// @Summary      Reject validation
// @Description  Rejects the month and cancels the recurring expense. Set charged_this_month when the month was already billed.
// @Tags         validations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Validation ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /validations/{id}/reject [post]
func (h *ValidationHandler) Reject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid validation ID"))
		return
	}

	// Body is optional; the flag defaults to false.
	var body struct {
		ChargedThisMonth bool `json:"charged_this_month"`
	}
	_ = c.ShouldBindJSON(&body)

	validation, err := h.validationService.Reject(c.Request.Context(), middleware.CurrentUser(c), id, body.ChargedThisMonth)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, validation))
}

// CreateMonthly triggers the idempotent monthly validation creation batch
// @Summary      Create monthly validations
// @Description  Creates one validation per scheduled recurring expense for the month. Safe to re-run.
// @Tags         validations
// @Produce      json
// @Security     BearerAuth
// @Param        month  query     string  false  "Target month (YYYY-MM), defaults to current"
// @Success      200    {object}  response.Response
// @Router       /validations/create-monthly [post]
func (h *ValidationHandler) CreateMonthly(c *gin.Context) {
	month, ok := parseMonth(c, "month")
	if !ok {
		return
	}
	target := time.Now()
	if month != nil {
		target = *month
	}

	created, err := h.validationService.CreateMonthlyValidations(c.Request.Context(), target)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"created":     len(created),
		"validations": created,
	}))
}

// MarkOverdue triggers the overdue sweep
// @Summary      Mark overdue validations
// @Description  Flips PENDING validations past the grace period to OVERDUE and alerts owners
// @Tags         validations
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Router       /validations/mark-overdue [post]
func (h *ValidationHandler) MarkOverdue(c *gin.Context) {
	count, err := h.validationService.MarkOverdue(c.Request.Context())
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"marked_overdue": count}))
}
