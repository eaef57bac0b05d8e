package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors carry no infrastructure dependency.

var (
	// Validation errors
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidMode        = errors.New("invalid mode")
	ErrInvalidTarget      = errors.New("weekly target must be positive")
	ErrInvalidXP          = errors.New("xp amount must not be negative")
	ErrInvalidProgress    = errors.New("quest progress must not be negative")
	ErrMalformedTimestamp = errors.New("activity record has no valid timestamp")

	// Not-found errors
	ErrQuestNotFound        = errors.New("quest not found")
	ErrSkillNotFound        = errors.New("skill not found")
	ErrApplicationNotFound  = errors.New("application not found")
	ErrNotificationNotFound = errors.New("notification not found")

	// State errors
	ErrQuestExpired = errors.New("quest has expired")

	// External I/O
	ErrStorage = errors.New("storage unavailable")
)

// StorageError wraps a failure from the persistence collaborator.
// errors.Is(err, ErrStorage) holds for every StorageError.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "storage: " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is makes every StorageError match ErrStorage.
func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// IsNotFound reports whether err is one of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrQuestNotFound) ||
		errors.Is(err, ErrSkillNotFound) ||
		errors.Is(err, ErrApplicationNotFound) ||
		errors.Is(err, ErrNotificationNotFound)
}

// IsValidation reports whether err was caused by bad caller input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidMode) ||
		errors.Is(err, ErrInvalidTarget) ||
		errors.Is(err, ErrInvalidXP) ||
		errors.Is(err, ErrInvalidProgress) ||
		errors.Is(err, ErrQuestExpired)
}
