package domain

import "errors"

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrNoVoucherAvailable = errors.New("no voucher available")
	ErrUnknownPlan        = errors.New("unknown plan")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrStatusConflict     = errors.New("order status conflict")
	ErrVoucherExists      = errors.New("voucher code already exists")
	ErrInvalidSignature   = errors.New("invalid webhook signature")
	ErrInvalidPayload     = errors.New("invalid webhook payload")
)
