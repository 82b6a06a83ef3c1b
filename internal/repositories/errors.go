package repositories

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrOwnershipViolation means the task does not exist or belongs to
	// another user. The two cases are deliberately indistinguishable.
	ErrOwnershipViolation = errors.New("task not found or not owned by user")

	// ErrConditionFailed is returned by a Store when the conditions of an
	// Update do not hold on the stored record.
	ErrConditionFailed = errors.New("conditional update failed")
)

type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// PartialBatchFailure reports the tasks a batch operation could not update.
// Updates that succeeded are not rolled back.
type PartialBatchFailure struct {
	Failed map[string]error
}

func (e *PartialBatchFailure) Error() string {
	ids := e.FailedIDs()
	return fmt.Sprintf("%d task update(s) failed: %s", len(ids), strings.Join(ids, ", "))
}

func (e *PartialBatchFailure) FailedIDs() []string {
	ids := make([]string, 0, len(e.Failed))
	for id := range e.Failed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
