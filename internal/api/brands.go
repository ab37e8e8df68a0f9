package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"clubcorra/internal/service"
	"clubcorra/internal/utils"
)

// BrandRequest creates or replaces a brand. Percentage ranges are checked by the service.
type BrandRequest struct {
	Name                 string          `json:"name" binding:"required,max=150"`
	Description          string          `json:"description" binding:"omitempty,max=1000"`
	LogoURL              string          `json:"logo_url" binding:"omitempty,url,max=500"`
	CategoryID           *uint           `json:"category_id"`
	EarningPercentage    decimal.Decimal `json:"earning_percentage"`
	RedemptionPercentage decimal.Decimal `json:"redemption_percentage"`
	MinRedemptionAmount  int64           `json:"min_redemption_amount" binding:"gte=0"`
	MaxRedemptionAmount  int64           `json:"max_redemption_amount" binding:"gte=0"`
	BrandwiseMaxCap      int64           `json:"brandwise_max_cap" binding:"gte=0"`
	IsActive             *bool           `json:"is_active"`
}

func (r BrandRequest) input() service.BrandInput {
	return service.BrandInput{
		Name:                 r.Name,
		Description:          r.Description,
		LogoURL:              r.LogoURL,
		CategoryID:           r.CategoryID,
		EarningPercentage:    r.EarningPercentage,
		RedemptionPercentage: r.RedemptionPercentage,
		MinRedemptionAmount:  r.MinRedemptionAmount,
		MaxRedemptionAmount:  r.MaxRedemptionAmount,
		BrandwiseMaxCap:      r.BrandwiseMaxCap,
		IsActive:             r.IsActive,
	}
}

// ActiveRequest toggles an active flag
type ActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// CategoryRequest creates or replaces a category
type CategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"omitempty,max=500"`
	Icon        string `json:"icon" binding:"omitempty,max=100"`
	Color       string `json:"color" binding:"omitempty,max=20"`
}

func (r CategoryRequest) input() service.CategoryInput {
	return service.CategoryInput{Name: r.Name, Description: r.Description, Icon: r.Icon, Color: r.Color}
}

// ListBrandsHandler lists brands; the public listing never shows inactive ones
func ListBrandsHandler(brands service.BrandService, includeInactive bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		categoryID, err := queryID(c, "category_id")
		if err != nil {
			respondError(c, err)
			return
		}
		f := service.BrandFilter{CategoryID: categoryID, Search: c.Query("search"), IncludeInactive: includeInactive}
		page, err := brands.List(c.Request.Context(), f, utils.ParsePage(c.Query("page"), c.Query("page_size")))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// GetBrandHandler returns one brand
func GetBrandHandler(brands service.BrandService, includeInactive bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		b, err := brands.Get(c.Request.Context(), id, includeInactive)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

// CreateBrandHandler adds a partner brand
func CreateBrandHandler(brands service.BrandService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BrandRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		b, err := brands.Create(c.Request.Context(), req.input())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, b)
	}
}

// UpdateBrandHandler replaces a brand's fields
func UpdateBrandHandler(brands service.BrandService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req BrandRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		b, err := brands.Update(c.Request.Context(), id, req.input())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

// SetBrandActiveHandler shows or hides a brand in the app
func SetBrandActiveHandler(brands service.BrandService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req ActiveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		b, err := brands.SetActive(c.Request.Context(), id, *req.IsActive)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

// DeleteBrandHandler soft deletes a brand
func DeleteBrandHandler(brands service.BrandService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := brands.Delete(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// ListCategoriesHandler returns every category
func ListCategoriesHandler(categories service.CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := categories.List(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": list})
	}
}

// CreateCategoryHandler adds a category
func CreateCategoryHandler(categories service.CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		cat, err := categories.Create(c.Request.Context(), req.input())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, cat)
	}
}

// UpdateCategoryHandler replaces a category's fields
func UpdateCategoryHandler(categories service.CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req CategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		cat, err := categories.Update(c.Request.Context(), id, req.input())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cat)
	}
}

// DeleteCategoryHandler removes a category nobody references
func DeleteCategoryHandler(categories service.CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := categories.Delete(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
