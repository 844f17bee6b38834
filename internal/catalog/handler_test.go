package catalog

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestCategoryRequest_PriorityBounds(t *testing.T) {
	v := validator.New()

	for level := 1; level <= 4; level++ {
		assert.NoError(t, v.Struct(CreateCategoryRequest{Name: "Plumbing", PriorityLevel: level}),
			"priority %d should be accepted", level)
	}

	assert.Error(t, v.Struct(CreateCategoryRequest{Name: "Plumbing", PriorityLevel: 5}),
		"priority 5 should be rejected")
	assert.Error(t, v.Struct(UpdateCategoryRequest{Name: "Plumbing", PriorityLevel: 5}))

	// Create may omit the priority, update must carry one.
	assert.NoError(t, v.Struct(CreateCategoryRequest{Name: "Plumbing"}))
	assert.Error(t, v.Struct(UpdateCategoryRequest{Name: "Plumbing"}))
}
