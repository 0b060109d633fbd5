package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/shopfront/pkg/validate"
)

type productInput struct {
	Name        string  `json:"name"        validate:"required,max=10"`
	Description string  `json:"description" validate:"required"`
	Price       float64 `json:"price"       validate:"required,gte=0"`
	Count       int     `json:"count"       validate:"required,gte=0"`
	Ref         string  `json:"ref"         validate:"nullable,uuid"`
}

func TestStruct_Valid(t *testing.T) {
	errs := validate.Struct(productInput{Name: "Lamp", Description: "d", Price: 9.5, Count: 3})
	assert.False(t, validate.HasErrors(errs), "%v", errs)
}

func TestStruct_RequiredTreatsZeroAsMissing(t *testing.T) {
	errs := validate.Struct(&productInput{Name: "", Price: 0, Count: 0})
	assert.Equal(t, []string{"count", "description", "name", "price"}, errs.Fields())
	assert.Equal(t, "The count field is required.", errs["count"])
}

func TestStruct_RequiredAcceptsWhitespace(t *testing.T) {
	errs := validate.Struct(productInput{Name: " ", Description: "\t", Price: 1, Count: 1})
	assert.False(t, validate.HasErrors(errs), "%v", errs)
}

func TestStruct_Ranges(t *testing.T) {
	errs := validate.Struct(productInput{Name: "a very long name", Description: "d", Price: -1, Count: -2})
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "price")
	assert.Contains(t, errs, "count")
}

func TestStruct_NullableSkipsEmpty(t *testing.T) {
	base := productInput{Name: "Lamp", Description: "d", Price: 1, Count: 1}

	assert.Empty(t, validate.Struct(base))

	base.Ref = "not-a-uuid"
	assert.Contains(t, validate.Struct(base), "ref")

	base.Ref = "9b2d1f64-1c5e-4f0e-8d8e-6a2f0a6c1b11"
	assert.Empty(t, validate.Struct(base))
}

func TestStruct_NumericString(t *testing.T) {
	type row struct {
		Price string `json:"price" validate:"nullable,numeric"`
	}
	assert.Empty(t, validate.Struct(row{Price: "10.99"}))
	assert.Contains(t, validate.Struct(row{Price: "ten"}), "price")
}

func TestStruct_NonStructIsValid(t *testing.T) {
	assert.Empty(t, validate.Struct(42))
}
