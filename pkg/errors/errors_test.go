package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeProjectionNotReady, "no projection published yet")
	require.NotNil(t, err)
	assert.Equal(t, ErrCodeProjectionNotReady, err.Code)
	assert.Equal(t, "no projection published yet", err.Message)
	assert.NotEmpty(t, err.Stack)
	assert.Contains(t, err.Error(), "SPACE_001")
}

func TestNewf(t *testing.T) {
	err := Newf(ErrCodeEntryNotFound, "entry %d not found", 42)
	assert.Equal(t, "entry 42 not found", err.Message)
}

func TestError_WithDetail(t *testing.T) {
	base := New(ErrCodeValidation, "validation failed")
	detailed := base.WithDetail("score=120")

	assert.Empty(t, base.Detail)
	assert.Equal(t, "score=120", detailed.Detail)
	assert.Contains(t, detailed.Error(), "score=120")

	var nilErr *AppError
	assert.Nil(t, nilErr.WithDetail("x"))
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(cause, ErrCodeDatabaseError, "failed to load entries")
	require.NotNil(t, err)
	assert.Equal(t, ErrCodeDatabaseError, err.Code)
	assert.ErrorIs(t, err, cause)

	assert.Nil(t, Wrap(nil, ErrCodeInternal, "ignored"))
}

func TestWrap_PreservesCodeForUnknown(t *testing.T) {
	inner := New(ErrCodePointDuplicate, "duplicate point")
	outer := Wrap(inner, ErrCodeUnknown, "create failed")
	assert.Equal(t, ErrCodePointDuplicate, outer.Code)
}

func TestIsCode(t *testing.T) {
	inner := New(ErrCodeProjectionNotReady, "not ready")
	outer := Wrap(inner, ErrCodeRecommendFailed, "recommend failed")

	assert.True(t, IsCode(outer, ErrCodeRecommendFailed))
	assert.True(t, IsCode(outer, ErrCodeProjectionNotReady))
	assert.False(t, IsCode(outer, ErrCodeNotFound))
	assert.False(t, IsCode(nil, ErrCodeNotFound))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(New(ErrCodeEntryNotFound, "missing")))
	assert.True(t, IsNotFound(New(ErrCodePointNotFound, "missing")))
	assert.True(t, IsNotFound(NotFound("missing")))
	assert.False(t, IsNotFound(New(ErrCodeInternal, "boom")))
	assert.False(t, IsNotFound(errors.New("plain")))
}

func TestIsValidation(t *testing.T) {
	assert.True(t, IsValidation(New(ErrCodeAxisProfileInvalid, "bad profile")))
	assert.True(t, IsValidation(New(ErrCodeScoreOutOfRange, "bad score")))
	assert.True(t, IsValidation(Validation("nope")))
	assert.False(t, IsValidation(New(ErrCodeCacheError, "miss")))
}

func TestIsConflict(t *testing.T) {
	assert.True(t, IsConflict(Conflict("clash")))
	assert.True(t, IsConflict(New(ErrCodePointDuplicate, "dup")))
	assert.False(t, IsConflict(New(ErrCodeNotFound, "missing")))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, ErrCodeOK, GetCode(nil))
	assert.Equal(t, ErrCodeUnknown, GetCode(errors.New("plain")))
	assert.Equal(t, ErrCodeProjectionNotReady, GetCode(New(ErrCodeProjectionNotReady, "not ready")))

	wrapped := fmt.Errorf("outer: %w", New(ErrCodeCacheError, "miss"))
	assert.Equal(t, ErrCodeCacheError, GetCode(wrapped))
}

func TestHTTPStatusForCode(t *testing.T) {
	assert.Equal(t, http.StatusConflict, HTTPStatusForCode(ErrCodeProjectionNotReady))
	assert.Equal(t, http.StatusNotFound, HTTPStatusForCode(ErrCodeEntryNotFound))
	assert.Equal(t, http.StatusBadRequest, HTTPStatusForCode(ErrCodeAxisProfileInvalid))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusForCode(ErrorCode("NOPE_999")))
}

func TestDefaultMessageForCode(t *testing.T) {
	assert.Equal(t, "projection not ready; normalize the entry set first",
		DefaultMessageForCode(ErrCodeProjectionNotReady))
	assert.Equal(t, "unknown error", DefaultMessageForCode(ErrorCode("NOPE_999")))
}

func TestClientServerClassification(t *testing.T) {
	assert.True(t, IsClientError(ErrCodeScoreOutOfRange))
	assert.False(t, IsServerError(ErrCodeScoreOutOfRange))
	assert.True(t, IsServerError(ErrCodeRecommendFailed))
}

func TestModuleForCode(t *testing.T) {
	assert.Equal(t, "SPACE", ModuleForCode(ErrCodeProjectionNotReady))
	assert.Equal(t, "COMMON", ModuleForCode(ErrCodeInternal))
	assert.Equal(t, "OK", ModuleForCode(ErrCodeOK))
}
