package tenant

import "errors"

var (
	ErrTenantNotFound       = errors.New("tenant not found")
	ErrTenantAlreadyExists  = errors.New("tenant already exists")
	ErrInvalidName          = errors.New("invalid tenant name")
	ErrInvalidCapacity      = errors.New("invalid tenant capacity")
	ErrCountExceedsCapacity = errors.New("current count exceeds capacity")
	ErrAtCapacity           = errors.New("tenant is at capacity")
	ErrSuspended            = errors.New("tenant is suspended")
)
