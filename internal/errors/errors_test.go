package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSiftError_Unwrap_PreservesOriginalError(t *testing.T) {
	// Given: an original error
	originalErr := errors.New("original error")

	// When: wrapping with SiftError
	siftErr := New(ErrCodeExtractOpen, "cannot open document: a.pdf", originalErr)

	// Then: unwrapping returns original error
	require.NotNil(t, siftErr)
	assert.Equal(t, originalErr, errors.Unwrap(siftErr))
	assert.True(t, errors.Is(siftErr, originalErr))
}

func TestSiftError_Error_ReturnsFormattedMessage(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		message  string
		expected string
	}{
		{
			name:     "config error",
			code:     ErrCodeConfigNotFound,
			message:  "config file not found",
			expected: "[ERR_101_CONFIG_NOT_FOUND] config file not found",
		},
		{
			name:     "scan error",
			code:     ErrCodeScanRoot,
			message:  "root is not a directory",
			expected: "[ERR_201_SCAN_ROOT] root is not a directory",
		},
		{
			name:     "extraction error",
			code:     ErrCodeExtractOpen,
			message:  "malformed xref table",
			expected: "[ERR_301_EXTRACT_OPEN] malformed xref table",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, nil)
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestSiftError_Is_MatchesByCode(t *testing.T) {
	// Given: two errors with same code
	err1 := New(ErrCodeExtractOpen, "document A failed", nil)
	err2 := New(ErrCodeExtractOpen, "document B failed", nil)

	// Then: they match by code
	assert.True(t, errors.Is(err1, err2))
}

func TestSiftError_Is_DoesNotMatchDifferentCodes(t *testing.T) {
	// Given: two errors with different codes
	err1 := New(ErrCodeExtractOpen, "extraction failed", nil)
	err2 := New(ErrCodeStoreWrite, "write failed", nil)

	// Then: they don't match
	assert.False(t, errors.Is(err1, err2))
}

func TestSiftError_WithDetails_AddsContext(t *testing.T) {
	// Given: a base error
	err := New(ErrCodeExtractPage, "page text failed", nil)

	// When: adding details
	err = err.WithDetail("path", "/docs/report.pdf")
	err = err.WithDetail("page", "12")

	// Then: details are available
	assert.Equal(t, "/docs/report.pdf", err.Details["path"])
	assert.Equal(t, "12", err.Details["page"])
}

func TestSiftError_WithSuggestion_AddsSuggestion(t *testing.T) {
	// Given: a store lock error
	err := New(ErrCodeStoreLocked, "index is locked by another process", nil)

	// When: adding suggestion
	err = err.WithSuggestion("Wait for the other pdfsift run to finish")

	// Then: suggestion is available
	assert.Equal(t, "Wait for the other pdfsift run to finish", err.Suggestion)
}

func TestSiftError_CategoryFromCode(t *testing.T) {
	tests := []struct {
		code         string
		wantCategory Category
	}{
		{ErrCodeConfigNotFound, CategoryConfig},
		{ErrCodeConfigInvalid, CategoryConfig},
		{ErrCodeScanRoot, CategoryScan},
		{ErrCodeEntryAccess, CategoryScan},
		{ErrCodeExtractOpen, CategoryExtraction},
		{ErrCodeExtractPage, CategoryExtraction},
		{ErrCodeInvalidInput, CategoryValidation},
		{ErrCodeQueryEmpty, CategoryValidation},
		{ErrCodeStoreWrite, CategoryStore},
		{ErrCodeCorruptIndex, CategoryStore},
		{ErrCodeInternal, CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test message", nil)
			assert.Equal(t, tt.wantCategory, err.Category)
		})
	}
}

func TestSiftError_SeverityFromCode(t *testing.T) {
	tests := []struct {
		code         string
		wantSeverity Severity
	}{
		{ErrCodeCorruptIndex, SeverityFatal},
		{ErrCodeStoreOpen, SeverityFatal},
		{ErrCodeStoreLocked, SeverityFatal},
		{ErrCodeScanRoot, SeverityError},
		{ErrCodeEntryAccess, SeverityWarning},
		{ErrCodeExtractOpen, SeverityWarning},
		{ErrCodeStoreWrite, SeverityWarning},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test message", nil)
			assert.Equal(t, tt.wantSeverity, err.Severity)
		})
	}
}

func TestWrap_CreatesSiftErrorFromError(t *testing.T) {
	// Given: a standard error
	originalErr := errors.New("something went wrong")

	// When: wrapping with a code
	siftErr := Wrap(ErrCodeInternal, originalErr)

	// Then: creates proper SiftError
	require.NotNil(t, siftErr)
	assert.Equal(t, ErrCodeInternal, siftErr.Code)
	assert.Equal(t, "something went wrong", siftErr.Message)
	assert.Equal(t, originalErr, siftErr.Cause)
}

func TestWrap_NilErrorReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestConstructors_SetExpectedCategories(t *testing.T) {
	assert.Equal(t, CategoryConfig, ConfigError("invalid yaml syntax", nil).Category)
	assert.Equal(t, CategoryScan, ScanError("cannot read root", nil).Category)
	assert.Equal(t, CategoryExtraction, ExtractionError("bad document", nil).Category)
	assert.Equal(t, CategoryValidation, ValidationError("query cannot be empty", nil).Category)
	assert.Equal(t, CategoryStore, StoreError("commit failed", nil).Category)
	assert.Equal(t, CategoryInternal, InternalError("unexpected state", nil).Category)
}

func TestIsFatal_ChecksFatalSeverity(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "corrupt index",
			err:      New(ErrCodeCorruptIndex, "index corrupt", nil),
			expected: true,
		},
		{
			name:     "store open failure",
			err:      New(ErrCodeStoreOpen, "cannot open database", nil),
			expected: true,
		},
		{
			name:     "extraction failure",
			err:      New(ErrCodeExtractOpen, "bad document", nil),
			expected: false,
		},
		{
			name:     "standard error",
			err:      errors.New("standard error"),
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsFatal(tt.err))
		})
	}
}

func TestFormatForLog_IncludesCodeAndDetails(t *testing.T) {
	err := New(ErrCodeExtractPage, "page text failed", errors.New("eof")).
		WithDetail("path", "/docs/a.pdf")

	attrs := FormatForLog(err)

	assert.Equal(t, ErrCodeExtractPage, attrs["error_code"])
	assert.Equal(t, "eof", attrs["cause"])
	assert.Equal(t, "/docs/a.pdf", attrs["detail_path"])
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, ErrCodeExtractOpen, GetCode(Wrap(ErrCodeExtractOpen, errors.New("bad header"))))
	assert.Equal(t, "", GetCode(errors.New("plain error")))
	assert.Equal(t, "", GetCode(nil))
}
