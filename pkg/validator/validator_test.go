package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lineInput struct {
	ProductID string          `json:"productId" validate:"required"`
	Quantity  int             `json:"quantity" validate:"gte=1"`
	Price     decimal.Decimal `json:"price" validate:"gte=0"`
	Sort      string          `json:"sort" validate:"omitempty,oneof=price_asc price_desc"`
}

func TestValidate_Success(t *testing.T) {
	in := lineInput{ProductID: "p1", Quantity: 2, Price: decimal.RequireFromString("9.99")}
	assert.NoError(t, Validate(in))
}

func TestValidate_ReportsJSONNames(t *testing.T) {
	err := Validate(lineInput{Quantity: 0, Price: decimal.NewFromInt(1)})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Equal(t, "is required", fields["productId"])
	assert.Equal(t, "must be greater than or equal to 1", fields["quantity"])
}

func TestValidate_DecimalComparedNumerically(t *testing.T) {
	err := Validate(lineInput{ProductID: "p1", Quantity: 1, Price: decimal.RequireFromString("-0.01")})

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields(), "price")
}

func TestValidate_OneOf(t *testing.T) {
	err := Validate(lineInput{ProductID: "p1", Quantity: 1, Sort: "random"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be one of: price_asc price_desc")
}

func TestVar(t *testing.T) {
	assert.NoError(t, Var("quantity", 3, "gte=1"))

	err := Var("quantity", 0, "gte=1")
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "field 'quantity' must be greater than or equal to 1", err.Error())
}

func TestDecodeAndValidate(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"productId":"p1","quantity":1}`))
	var in lineInput
	require.NoError(t, DecodeAndValidate(req, &in))
	assert.Equal(t, "p1", in.ProductID)

	req = httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{`))
	require.Error(t, DecodeAndValidate(req, &in))
}
