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

type ExpenseHandler struct {
	expenseService service.ExpenseService
	db             *gorm.DB
}

func NewExpenseHandler(expenseService service.ExpenseService, db *gorm.DB) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService, db: db}
}

func (h *ExpenseHandler) RegisterRoutes(router *gin.RouterGroup) {
	expenses := router.Group("/expenses", middleware.RequireAuth(h.db))
	{
		expenses.GET("", h.ListExpenses)
		expenses.GET("/:id", h.GetExpense)
		expenses.POST("", h.CreateExpense)
		expenses.POST("/:id/cancel", h.CancelExpense)
	}
}

// CreateExpense handles expense creation with currency conversion and code
// generation. The service decides whether the caller may create in the target
// company.
// @Summary      Create expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateExpenseRequest  true  "Expense Payload"
// @Success      201      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /expenses [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	var req service.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), middleware.CurrentUser(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, expense))
}

// ListExpenses returns the scoped, filtered, paginated expense list
// @Summary      List expenses
// @Tags         expenses
// @Produce      json
// @Security     BearerAuth
// @Param        company_id     query     string  false  "Filter by company"
// @Param        department_id  query     string  false  "Filter by department"
// @Param        category_id    query     string  false  "Filter by category"
// @Param        status         query     string  false  "Filter by status"
// @Success      200            {object}  response.Response
// @Failure      403            {object}  response.Response
// @Router       /expenses [get]
func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
	p := pagination.Parse(c)

	filter := service.ExpenseListFilter{
		Status: c.Query("status"),
		Page:   p.Page,
		Limit:  p.Limit,
	}

	for query, dst := range map[string]**uuid.UUID{
		"company_id":    &filter.CompanyID,
		"department_id": &filter.DepartmentID,
		"category_id":   &filter.CategoryID,
	} {
		raw := c.Query(query)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid "+query))
			return
		}
		*dst = &id
	}

	expenses, total, err := h.expenseService.ListExpenses(c.Request.Context(), middleware.CurrentUser(c), filter)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, pagination.NewPage(expenses, total, p)))
}

// GetExpense handles GET /expenses/:id
// @Summary      Get expense by ID
// @Tags         expenses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Expense ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /expenses/{id} [get]
func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid expense ID"))
		return
	}

	expense, err := h.expenseService.GetExpense(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, expense))
}

// CancelExpense handles POST /expenses/:id/cancel
// @Summary      Cancel expense
// @Description  Cancels a recurring expense; future months stop being scheduled
// @Tags         expenses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Expense ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /expenses/{id}/cancel [post]
func (h *ExpenseHandler) CancelExpense(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid expense ID"))
		return
	}

	expense, err := h.expenseService.CancelExpense(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, expense))
}
