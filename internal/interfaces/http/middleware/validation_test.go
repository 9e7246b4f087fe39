package middleware

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupValidator_ItemStatusTag(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)

	type payload struct {
		TargetStatus string `json:"target_status" binding:"required,itemstatus"`
	}

	assert.NoError(t, v.Struct(payload{TargetStatus: "DELIVERED"}))
	assert.Error(t, v.Struct(payload{TargetStatus: "TELEPORTED"}))

	// Field names in errors come from the json tag
	err := v.Struct(payload{TargetStatus: ""})
	require.Error(t, err)
	verrs, ok := err.(validator.ValidationErrors)
	require.True(t, ok)
	assert.Equal(t, "target_status", verrs[0].Field())
}
