package services

import "errors"

// Domain errors returned by the services. Handlers map them to HTTP statuses.
var (
	ErrEmailTaken         = errors.New("user with that email already exists")
	ErrEmailNotRegistered = errors.New("email is not registered")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrWrongEmailOrAnswer = errors.New("wrong email or answer")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserNotFound       = errors.New("user not found")

	ErrCategoryExists   = errors.New("category already exists")
	ErrCategoryNotFound = errors.New("category not found")

	ErrProductNotFound = errors.New("product not found")
	ErrPhotoNotFound   = errors.New("photo not found")

	ErrOrderNotFound = errors.New("order not found")
	ErrInvalidStatus = errors.New("invalid order status")

	ErrPaymentFailed = errors.New("payment failed")
)

// PhotoTooLarge is the message for a product photo over models.MaxPhotoSize.
const PhotoTooLarge = "Photo is Required and should be less than 1mb"

// ValidationError is a rejected input. Message is shown to the client as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(message string) error {
	return &ValidationError{Message: message}
}
