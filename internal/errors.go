package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidTaxInput  ErrorCode = "INVALID_TAX_INPUT"
	ErrCodeInvalidAmount    ErrorCode = "INVALID_AMOUNT"
	ErrCodeInvalidRate      ErrorCode = "INVALID_RATE"

	ErrCodeTransactionNotFound   ErrorCode = "TRANSACTION_NOT_FOUND"
	ErrCodeReimbursementNotFound ErrorCode = "REIMBURSEMENT_NOT_FOUND"
	ErrCodeIllegalTransition     ErrorCode = "ILLEGAL_TRANSITION"
	ErrCodeApprovalPending       ErrorCode = "APPROVAL_PENDING"
	ErrCodeApprovalRejected      ErrorCode = "APPROVAL_REJECTED"
	ErrCodeSelfApproval          ErrorCode = "SELF_APPROVAL"
	ErrCodeReasonRequired        ErrorCode = "REASON_REQUIRED"
	ErrCodeDuplicatePayment      ErrorCode = "DUPLICATE_PAYMENT"
	ErrCodeForbidden             ErrorCode = "FORBIDDEN"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

// Is lets errors.Is match sentinels by type and code, ignoring the
// per-instance message and details.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Details:    ValidationError{Field: field, Message: message, Code: string(code)},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// Workflow rejections carry the Thai text the UI shows directly, so the
// messages here are user-facing strings, not log strings.
var (
	ErrTransactionNotFound   = NewNotFoundError("ไม่พบรายการ", ErrCodeTransactionNotFound)
	ErrReimbursementNotFound = NewNotFoundError("ไม่พบคำขอเบิกเงิน", ErrCodeReimbursementNotFound)
	ErrIllegalTransition     = NewConflictError("ไม่สามารถดำเนินการจากสถานะปัจจุบันได้", ErrCodeIllegalTransition)
	ErrApprovalPending       = NewConflictError("ยังรออนุมัติอยู่", ErrCodeApprovalPending)
	ErrApprovalRejected      = NewConflictError("รายการนี้ถูกปฏิเสธการอนุมัติ", ErrCodeApprovalRejected)
	ErrSelfApproval          = NewForbiddenError("ไม่สามารถอนุมัติรายการของตนเองได้", ErrCodeSelfApproval)
	ErrReasonRequired        = NewValidationError("กรุณาระบุเหตุผล", ErrCodeReasonRequired)
	ErrDuplicatePayment      = NewConflictError("มีรายการชำระเงินของผู้จ่ายรายนี้อยู่แล้ว", ErrCodeDuplicatePayment)
	ErrForbidden             = NewForbiddenError("ไม่มีสิทธิ์ดำเนินการ", ErrCodeForbidden)

	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrUserInactive       = NewForbiddenError("User account is inactive", ErrCodeUserInactive)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
