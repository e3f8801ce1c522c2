package errors

import "fmt"

var (
	ErrAlreadyConnected   = fmt.Errorf("user already connected")
	ErrUnknownUser        = fmt.Errorf("unknown user")
	ErrUnknownRecipient   = fmt.Errorf("unknown recipient")
	ErrGroupAlreadyExists = fmt.Errorf("group already exists")
	ErrGroupNotFound      = fmt.Errorf("group not found")
	ErrAlreadyMember      = fmt.Errorf("user already a member of the group")
	ErrNotMember          = fmt.Errorf("user is not a member of the group")
	ErrDeliveryFailed     = fmt.Errorf("message delivery failed")
	ErrInvalidFilePayload = fmt.Errorf("invalid file payload")
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrEmptyWords         = fmt.Errorf("no words have been found")
)
