// Betty Organic - Back-Office Order Notifications and Sales Reports
// Copyright 2026 Yosef Ali
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Yosef-Ali/betty-organic-sub002

package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createOrderRequest struct {
	ID          string  `validate:"required"`
	Status      string  `validate:"omitempty,oneof=pending processing completed cancelled"`
	TotalAmount float64 `validate:"gte=0"`
	CustomerID  string  `validate:"omitempty,uuid"`
}

type pageRequest struct {
	Limit  int `validate:"min=1,max=200"`
	Offset int `validate:"min=0"`
}

func TestValidateStructPasses(t *testing.T) {
	req := createOrderRequest{
		ID:          "ord-1",
		Status:      "pending",
		TotalAmount: 42.5,
	}
	assert.Nil(t, ValidateStruct(&req))
}

func TestValidateStructRequired(t *testing.T) {
	err := ValidateStruct(&createOrderRequest{TotalAmount: 1})
	require.NotNil(t, err)

	apiErr := err.ToAPIError()
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
	assert.Equal(t, "ID is required", apiErr.Message)
	assert.Equal(t, "ID", apiErr.Details["field"])
}

func TestValidateStructOneOf(t *testing.T) {
	err := ValidateStruct(&createOrderRequest{ID: "ord-1", Status: "shipped"})
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "Status must be one of: pending processing completed cancelled")
}

func TestValidateStructNegativeAmount(t *testing.T) {
	err := ValidateStruct(&createOrderRequest{ID: "ord-1", TotalAmount: -5})
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "TotalAmount must be greater than or equal to 0")
}

func TestValidateStructMinMax(t *testing.T) {
	err := ValidateStruct(&pageRequest{Limit: 0})
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "Limit must be at least 1")

	err = ValidateStruct(&pageRequest{Limit: 500})
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "Limit must be at most 200")
}

func TestValidateStructMultipleErrors(t *testing.T) {
	err := ValidateStruct(&createOrderRequest{Status: "bogus", TotalAmount: -1})
	require.NotNil(t, err)
	require.Len(t, err.Errors(), 3)

	apiErr := err.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	require.True(t, ok)
	assert.Len(t, fields, 3)
}

func TestValidationErrorAccessors(t *testing.T) {
	err := ValidateStruct(&pageRequest{Limit: 500})
	require.NotNil(t, err)
	require.Len(t, err.Errors(), 1)

	fe := err.Errors()[0]
	assert.Equal(t, "Limit", fe.Field())
	assert.Equal(t, "max", fe.Tag())
	assert.Equal(t, "200", fe.Param())
	assert.Equal(t, 500, fe.Value())
}

func TestGetValidatorSingleton(t *testing.T) {
	assert.Same(t, GetValidator(), GetValidator())
}
