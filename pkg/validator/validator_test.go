package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRequest struct {
	ClientId string `json:"client_id" validate:"required,max=8"`
	Status   string `json:"status" validate:"omitempty,oneof=triggered rendering done failed"`
	Frame    int    `json:"frame" validate:"omitempty,min=1"`
}

func TestValidateOK(t *testing.T) {
	v := NewValidator()

	errs, ok := v.Validate(testRequest{ClientId: "client_0", Status: "done", Frame: 3})
	assert.True(t, ok)
	assert.Empty(t, errs)
}

func TestValidateReportsJSONFieldNames(t *testing.T) {
	v := NewValidator()

	errs, ok := v.Validate(testRequest{})
	require.False(t, ok)
	require.Len(t, errs, 1)
	assert.Equal(t, "client_id", errs[0].Field)
	assert.Equal(t, "REQUIRED", errs[0].Code)
	assert.Equal(t, "client_id is required", errs[0].Message)
}

func TestValidateRuleMessages(t *testing.T) {
	v := NewValidator()

	errs, ok := v.Validate(testRequest{ClientId: "way-too-long-id", Status: "paused", Frame: -1})
	require.False(t, ok)
	require.Len(t, errs, 3)

	byField := make(map[string]ValidationError)
	for _, e := range errs {
		byField[e.Field] = e
	}

	assert.Equal(t, "client_id must not exceed 8", byField["client_id"].Message)
	assert.Equal(t, "status must be one of: triggered rendering done failed", byField["status"].Message)
	assert.Equal(t, "frame must be at least 1", byField["frame"].Message)
}
