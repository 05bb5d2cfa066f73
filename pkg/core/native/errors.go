package native

import "errors"

// Errors returned by built-in contracts. They're wrapped with details, use
// errors.Is to check for them.
var (
	ErrUnauthorized          = errors.New("unauthorized")
	ErrAlreadyInitialized    = errors.New("the initial timestamp has already been initialized")
	ErrArrayLengthMismatch   = errors.New("array length mismatch")
	ErrVestingAlreadyStarted = errors.New("vesting has already started")
	ErrVestingNotStarted     = errors.New("vesting has not started")
	ErrZeroAmount            = errors.New("zero amount")
	ErrAlreadyChanged        = errors.New("investor has already been changed")
	ErrInvalidAddress        = errors.New("invalid address")
	ErrInvalidTimestamp      = errors.New("invalid timestamp")
	ErrContractInitialized   = errors.New("contract is already initialized")
	ErrNotInitialized        = errors.New("contract is not initialized")
	ErrNothingToTransfer     = errors.New("investor has already taken away reward tokens")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrOverflow              = errors.New("amount overflow")
	ErrUnknownPermission     = errors.New("unknown permission")
	ErrSettingsMismatch      = errors.New("settings differ from the stored ones")
)
