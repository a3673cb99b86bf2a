package utils

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harbinger-games/harbinger/internal/shared/errors"
)

type sampleSummary struct {
	UserID          string `json:"user_id" validate:"required"`
	DurationSeconds int    `json:"duration_seconds" validate:"gte=60,lte=7200"`
	Tags            []int  `json:"tags" validate:"max=2"`
}

func TestValidateStruct(t *testing.T) {
	require.NoError(t, ValidateStruct(sampleSummary{UserID: "p1", DurationSeconds: 600}))

	err := ValidateStruct(sampleSummary{DurationSeconds: 30, Tags: []int{1, 2, 3}})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))

	appErr := errors.GetAppError(err)
	assert.Contains(t, appErr.Details, "user_id is required")
	assert.Contains(t, appErr.Details, "duration_seconds must be greater than or equal to 60")
	assert.Contains(t, appErr.Details, "tags must contain at most 2 items")
}

func TestTranslateValidationError_NonValidator(t *testing.T) {
	assert.NoError(t, TranslateValidationError(nil))

	err := TranslateValidationError(fmt.Errorf("unexpected EOF"))
	assert.Equal(t, errors.ErrorTypeBadRequest, errors.GetAppError(err).Type)
	assert.Equal(t, "Invalid request body", errors.GetAppError(err).Message)
}
