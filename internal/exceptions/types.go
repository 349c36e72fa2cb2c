package exceptions

import (
	"errors"
	"fmt"
)

type ServiceError struct {
	StatusCode int
	Cause      error
}

func (se *ServiceError) Error() string {
	return se.Cause.Error()
}

func (se *ServiceError) Unwrap() error {
	return se.Cause
}

type RequestError interface {
	ToServiceError() *ServiceError
	Error() string
}

type ConflictError struct {
	Resource string
	Id       string
}

func (ce *ConflictError) Error() string {
	return fmt.Sprintf("Found conflicting %s with id: %s", ce.Resource, ce.Id)
}

func (ce *ConflictError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: 409,
		Cause:      ce,
	}
}

func Conflict(resource string, id string) *ConflictError {
	return &ConflictError{
		Resource: resource,
		Id:       id,
	}
}

type NotFoundError struct {
	Resource string
	Id       string
}

func (nfe *NotFoundError) Error() string {
	return fmt.Sprintf("Could not find a %s with id: %s", nfe.Resource, nfe.Id)
}

func (nfe *NotFoundError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: 404,
		Cause:      nfe,
	}
}

func NotFound(resource string, id string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		Id:       id,
	}
}

type InvalidInputError struct {
	Message string
}

func (ie *InvalidInputError) Error() string {
	return ie.Message
}

func (ie *InvalidInputError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: 400,
		Cause:      ie,
	}
}

func InvalidInput(message string) *InvalidInputError {
	return &InvalidInputError{
		Message: message,
	}
}

// UnauthorizedError is returned for mutating calls made without a resolved identity.
type UnauthorizedError struct {
	Action string
}

func (ue *UnauthorizedError) Error() string {
	return fmt.Sprintf("An authenticated user is required to %s", ue.Action)
}

func (ue *UnauthorizedError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: 401,
		Cause:      ue,
	}
}

func Unauthorized(action string) *UnauthorizedError {
	return &UnauthorizedError{
		Action: action,
	}
}

// UnavailableError wraps a transient store failure. Callers may retry.
type UnavailableError struct {
	Cause error
}

func (ue *UnavailableError) Error() string {
	return fmt.Sprintf("Store is unavailable: %v", ue.Cause)
}

func (ue *UnavailableError) Unwrap() error {
	return ue.Cause
}

func (ue *UnavailableError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: 503,
		Cause:      ue,
	}
}

func Unavailable(cause error) *UnavailableError {
	return &UnavailableError{
		Cause: cause,
	}
}

type InternalServerError struct {
	Message string
}

func (ie *InternalServerError) Error() string {
	return ie.Message
}

func (ie *InternalServerError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: 500,
		Cause:      ie,
	}
}

func InternalServer(message string) *InternalServerError {
	return &InternalServerError{
		Message: message,
	}
}

type TooManyRequestsError struct {
	Id string
}

func (te *TooManyRequestsError) Error() string {
	return fmt.Sprintf("Too many requests from %s", te.Id)
}

func (te *TooManyRequestsError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: 429,
		Cause:      te,
	}
}

func TooManyRequests(id string) *TooManyRequestsError {
	return &TooManyRequestsError{
		Id: id,
	}
}

func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

func IsUnauthorized(err error) bool {
	var ue *UnauthorizedError
	return errors.As(err, &ue)
}

func IsInvalidInput(err error) bool {
	var ie *InvalidInputError
	return errors.As(err, &ie)
}

// IsRetryable reports whether err is a transient store failure.
// Validation and authorization errors are terminal.
func IsRetryable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}

// StatusCode resolves the HTTP status for any error, defaulting to 500.
func StatusCode(err error) int {
	var re RequestError
	if errors.As(err, &re) {
		return re.ToServiceError().StatusCode
	}
	var se *ServiceError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 500
}
