// Package errors provides structured error handling for pdfsift.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Scan and file access errors
//   - 3XX: Extraction errors
//   - 4XX: Validation errors
//   - 5XX: Store and internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryScan indicates directory traversal and file access errors.
	CategoryScan Category = "SCAN"
	// CategoryExtraction indicates PDF parsing and text extraction errors.
	CategoryExtraction Category = "EXTRACTION"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryStore indicates index store errors.
	CategoryStore Category = "STORE"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// Scan errors (200-299)
	ErrCodeScanRoot       = "ERR_201_SCAN_ROOT"
	ErrCodeEntryAccess    = "ERR_202_ENTRY_ACCESS"
	ErrCodeFileNotFound   = "ERR_203_FILE_NOT_FOUND"
	ErrCodeFilePermission = "ERR_204_FILE_PERMISSION"

	// Extraction errors (300-399)
	ErrCodeExtractOpen = "ERR_301_EXTRACT_OPEN"
	ErrCodeExtractPage = "ERR_302_EXTRACT_PAGE"

	// Validation errors (400-499)
	ErrCodeInvalidInput = "ERR_401_INVALID_INPUT"
	ErrCodeQueryEmpty   = "ERR_402_QUERY_EMPTY"
	ErrCodeInvalidPath  = "ERR_403_INVALID_PATH"

	// Store and internal errors (500-599)
	ErrCodeStoreOpen    = "ERR_501_STORE_OPEN"
	ErrCodeStoreSchema  = "ERR_502_STORE_SCHEMA"
	ErrCodeStoreWrite   = "ERR_503_STORE_WRITE"
	ErrCodeStoreQuery   = "ERR_504_STORE_QUERY"
	ErrCodeCorruptIndex = "ERR_505_CORRUPT_INDEX"
	ErrCodeStoreLocked  = "ERR_506_STORE_LOCKED"
	ErrCodeInternal     = "ERR_510_INTERNAL"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Extract numeric portion (e.g., "201" from "ERR_201_SCAN_ROOT")
	numStr := code[4:7]
	if len(numStr) < 1 {
		return CategoryInternal
	}

	switch numStr[0] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryScan
	case '3':
		return CategoryExtraction
	case '4':
		return CategoryValidation
	case '5':
		if code == ErrCodeInternal {
			return CategoryInternal
		}
		return CategoryStore
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	// Fatal errors abort the command.
	switch code {
	case ErrCodeStoreOpen, ErrCodeStoreSchema, ErrCodeCorruptIndex, ErrCodeStoreLocked:
		return SeverityFatal
	}

	// Per-item failures are logged and the run continues.
	switch code {
	case ErrCodeEntryAccess, ErrCodeExtractOpen, ErrCodeExtractPage, ErrCodeStoreWrite:
		return SeverityWarning
	}

	return SeverityError
}
