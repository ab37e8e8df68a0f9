package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubcorra/internal/domain"
	"clubcorra/internal/utils"
)

func validBrand(name string) BrandInput {
	return BrandInput{
		Name:                 name,
		EarningPercentage:    decimal.RequireFromString("5"),
		RedemptionPercentage: decimal.RequireFromString("10"),
	}
}

func TestBrandValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *BrandInput)
		field  string
	}{
		{"blank name", func(in *BrandInput) { in.Name = "  " }, "name"},
		{"earning over 100", func(in *BrandInput) { in.EarningPercentage = decimal.RequireFromString("100.01") }, "earning_percentage"},
		{"negative redemption", func(in *BrandInput) { in.RedemptionPercentage = decimal.RequireFromString("-1") }, "redemption_percentage"},
		{"min above max", func(in *BrandInput) { in.MinRedemptionAmount, in.MaxRedemptionAmount = 50, 10 }, "min_redemption_amount"},
		{"negative cap", func(in *BrandInput) { in.BrandwiseMaxCap = -5 }, "brandwise_max_cap"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validBrand("Cafe")
			tt.mutate(&in)
			err := validateBrand(&in)
			var fe *FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.field, fe.Field)
		})
	}
	in := validBrand("Cafe")
	in.MinRedemptionAmount = 10 // No maximum set
	assert.NoError(t, validateBrand(&in))
}

func TestBrandCRUD(t *testing.T) {
	gdb := seededDB(t)
	cache, _ := newCache(t)
	svc := NewBrandService(gdb, cache)
	ctx := context.Background()

	var food domain.BrandCategory
	require.NoError(t, gdb.Where("name = ?", "Food & Dining").First(&food).Error)

	in := validBrand("Cafe Coffee")
	in.CategoryID = &food.ID
	b, err := svc.Create(ctx, in)
	require.NoError(t, err)
	assert.True(t, b.IsActive)

	_, err = svc.Create(ctx, validBrand("Cafe Coffee"))
	assert.ErrorIs(t, err, ErrConflict)

	missing := uint(9999)
	bad := validBrand("Other")
	bad.CategoryID = &missing
	_, err = svc.Create(ctx, bad)
	assert.ErrorIs(t, err, ErrValidation)

	upd := validBrand("Cafe Coffee Day")
	upd.EarningPercentage = decimal.RequireFromString("7.5")
	got, err := svc.Update(ctx, b.ID, upd)
	require.NoError(t, err)
	assert.Equal(t, "Cafe Coffee Day", got.Name)
	assert.True(t, got.EarningPercentage.Equal(decimal.RequireFromString("7.5")))
	assert.Nil(t, got.CategoryID)
	assert.True(t, got.IsActive, "nil IsActive keeps the current value")

	_, err = svc.Update(ctx, 9999, upd)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.Delete(ctx, b.ID))
	assert.ErrorIs(t, svc.Delete(ctx, b.ID), ErrNotFound)
	_, err = svc.Get(ctx, b.ID, true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBrandListingHidesInactiveAndInvalidatesCache(t *testing.T) {
	gdb := seededDB(t)
	cache, mr := newCache(t)
	svc := NewBrandService(gdb, cache)
	ctx := context.Background()
	p := utils.Page{Page: 1, PageSize: 20}

	a, err := svc.Create(ctx, validBrand("Alpha"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, validBrand("Beta"))
	require.NoError(t, err)

	list, err := svc.List(ctx, BrandFilter{}, p)
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Total)
	assert.NotEmpty(t, mr.Keys(), "public listing is cached")

	_, err = svc.SetActive(ctx, a.ID, false)
	require.NoError(t, err)
	assert.Empty(t, mr.Keys(), "writes drop the brand caches")

	list, err = svc.List(ctx, BrandFilter{}, p)
	require.NoError(t, err)
	require.Equal(t, int64(1), list.Total)
	assert.Equal(t, "Beta", list.Items[0].Name)

	list, err = svc.List(ctx, BrandFilter{IncludeInactive: true}, p)
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Total)

	list, err = svc.List(ctx, BrandFilter{Search: "BET"}, p)
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)

	_, err = svc.Get(ctx, a.ID, false)
	assert.ErrorIs(t, err, ErrNotFound)
	got, err := svc.Get(ctx, a.ID, true)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestCategories(t *testing.T) {
	gdb := seededDB(t)
	cache, _ := newCache(t)
	cats := NewCategoryService(gdb, cache)
	brands := NewBrandService(gdb, cache)
	ctx := context.Background()

	list, err := cats.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 5)

	c, err := cats.Create(ctx, CategoryInput{Name: "Wellness", Icon: "leaf"})
	require.NoError(t, err)
	_, err = cats.Create(ctx, CategoryInput{Name: "Wellness"})
	assert.ErrorIs(t, err, ErrConflict)
	_, err = cats.Create(ctx, CategoryInput{})
	assert.ErrorIs(t, err, ErrValidation)

	list, err = cats.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 6, "create invalidates the cached list")

	updated, err := cats.Update(ctx, c.ID, CategoryInput{Name: "Health", Color: "#00FF00"})
	require.NoError(t, err)
	assert.Equal(t, "Health", updated.Name)

	in := validBrand("Spa")
	in.CategoryID = &c.ID
	b, err := brands.Create(ctx, in)
	require.NoError(t, err)
	assert.ErrorIs(t, cats.Delete(ctx, c.ID), ErrConflict)

	require.NoError(t, brands.Delete(ctx, b.ID)) // Soft deleted brands no longer hold the category
	require.NoError(t, cats.Delete(ctx, c.ID))
	assert.ErrorIs(t, cats.Delete(ctx, c.ID), ErrNotFound)
}
