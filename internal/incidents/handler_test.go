package incidents

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestCreateIncidentRequest_PriorityBounds(t *testing.T) {
	v := validator.New()

	valid := CreateIncidentRequest{
		Title:       "Broken radiator",
		Description: "No heat in room 204",
		CategoryID:  "cat-1",
	}

	for level := 1; level <= 4; level++ {
		req := valid
		req.PriorityLevel = level
		assert.NoError(t, v.Struct(req), "priority %d should be accepted", level)
	}

	tooHigh := valid
	tooHigh.PriorityLevel = 5
	assert.Error(t, v.Struct(tooHigh), "priority 5 should be rejected")

	negative := valid
	negative.PriorityLevel = -1
	assert.Error(t, v.Struct(negative))

	// Zero means "inherit from category" and passes through omitempty.
	assert.NoError(t, v.Struct(valid))
}

func TestUpdateIncidentRequest_PriorityBounds(t *testing.T) {
	v := validator.New()

	level := 4
	assert.NoError(t, v.Struct(UpdateIncidentRequest{PriorityLevel: &level}))

	level = 5
	assert.Error(t, v.Struct(UpdateIncidentRequest{PriorityLevel: &level}))

	assert.NoError(t, v.Struct(UpdateIncidentRequest{}), "all fields optional on patch")
}
