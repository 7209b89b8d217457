package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrganizationHandler struct {
	companyService    service.CompanyService
	departmentService service.DepartmentService
	db                *gorm.DB
}

func NewOrganizationHandler(companyService service.CompanyService, departmentService service.DepartmentService, db *gorm.DB) *OrganizationHandler {
	return &OrganizationHandler{
		companyService:    companyService,
		departmentService: departmentService,
		db:                db,
	}
}

func (h *OrganizationHandler) RegisterRoutes(router *gin.RouterGroup) {
	adminOnly := middleware.RequireRole(model.RoleSystemAdmin, model.RoleFinanceAdmin)

	companies := router.Group("/companies", middleware.RequireAuth(h.db))
	{
		companies.GET("", h.ListCompanies)
		companies.GET("/:id", h.GetCompany)
		companies.POST("", adminOnly, h.CreateCompany)
		companies.PUT("/:id", adminOnly, h.UpdateCompany)
		companies.DELETE("/:id", adminOnly, h.DeactivateCompany)
	}

	departments := router.Group("/departments", middleware.RequireAuth(h.db))
	{
		departments.GET("", h.ListDepartments)
		departments.GET("/:id", h.GetDepartment)
		departments.POST("", adminOnly, h.CreateDepartment)
		departments.PUT("/:id", adminOnly, h.UpdateDepartment)
		departments.DELETE("/:id", adminOnly, h.DeactivateDepartment)
	}
}

// --- Companies ---

// CreateCompany handles POST /companies
// @Summary      Create company
// @Tags         companies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateCompanyRequest  true  "Company Payload"
// @Success      201      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Router       /companies [post]
func (h *OrganizationHandler) CreateCompany(c *gin.Context) {
	var req service.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	company, err := h.companyService.CreateCompany(c.Request.Context(), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, company))
}

// ListCompanies handles GET /companies
// @Summary      List companies
// @Tags         companies
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Router       /companies [get]
func (h *OrganizationHandler) ListCompanies(c *gin.Context) {
	p := pagination.Parse(c)

	companies, total, err := h.companyService.ListCompanies(c.Request.Context(), p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch companies"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, pagination.NewPage(companies, total, p)))
}

// GetCompany handles GET /companies/:id
func (h *OrganizationHandler) GetCompany(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid company ID"))
		return
	}

	company, err := h.companyService.GetCompany(c.Request.Context(), id)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, company))
}

// UpdateCompany handles PUT /companies/:id
func (h *OrganizationHandler) UpdateCompany(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid company ID"))
		return
	}

	var req service.UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	company, err := h.companyService.UpdateCompany(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, company))
}

// DeactivateCompany handles DELETE /companies/:id as a soft delete
func (h *OrganizationHandler) DeactivateCompany(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid company ID"))
		return
	}

	if err := h.companyService.DeactivateCompany(c.Request.Context(), id); err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Company deactivated"))
}

// --- Departments ---

// CreateDepartment handles POST /departments
// @Summary      Create department
// @Tags         departments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateDepartmentRequest  true  "Department Payload"
// @Success      201      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Router       /departments [post]
func (h *OrganizationHandler) CreateDepartment(c *gin.Context) {
	var req service.CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	department, err := h.departmentService.CreateDepartment(c.Request.Context(), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, department))
}

// ListDepartments handles GET /departments with an optional company filter
// @Summary      List departments
// @Tags         departments
// @Produce      json
// @Security     BearerAuth
// @Param        company_id  query     string  false  "Filter by company"
// @Success      200         {object}  response.Response
// @Router       /departments [get]
func (h *OrganizationHandler) ListDepartments(c *gin.Context) {
	p := pagination.Parse(c)

	var companyID *uuid.UUID
	if raw := c.Query("company_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid company_id"))
			return
		}
		companyID = &id
	}

	departments, total, err := h.departmentService.ListDepartments(c.Request.Context(), companyID, p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch departments"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, pagination.NewPage(departments, total, p)))
}

// GetDepartment handles GET /departments/:id
func (h *OrganizationHandler) GetDepartment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid department ID"))
		return
	}

	department, err := h.departmentService.GetDepartment(c.Request.Context(), id)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, department))
}

// UpdateDepartment handles PUT /departments/:id
func (h *OrganizationHandler) UpdateDepartment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid department ID"))
		return
	}

	var req service.UpdateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	department, err := h.departmentService.UpdateDepartment(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, department))
}

// DeactivateDepartment handles DELETE /departments/:id as a soft delete
func (h *OrganizationHandler) DeactivateDepartment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid department ID"))
		return
	}

	if err := h.departmentService.DeactivateDepartment(c.Request.Context(), id); err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Department deactivated"))
}
