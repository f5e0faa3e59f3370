package service

import "errors"

var (
	ErrEmptyCart           = errors.New("no order lines provided")
	ErrPlantNotFound       = errors.New("plant not found")
	ErrInvalidDeliveryInfo = errors.New("invalid delivery info")
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderAccessDenied   = errors.New("not authorized to view this order")
	ErrPromotionPriceHigh  = errors.New("promotion price cannot exceed base price")
	ErrUserAlreadyExists   = errors.New("an account already exists with this email")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidEmail        = errors.New("invalid email format")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrAlreadyVerified     = errors.New("email already verified")
	ErrUserNotFound        = errors.New("user not found")
)
