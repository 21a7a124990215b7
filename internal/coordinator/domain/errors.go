package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrFatal marks failures that must not be retried as the same attempt.
	ErrFatal = errors.New("fatal recovery failure")

	ErrNotReady            = errors.New("backup has not finished partitioning the segment")
	ErrReplicaNotFound     = errors.New("replica not found")
	ErrNoLogHead           = errors.New("no log head found")
	ErrIncompleteLog       = errors.New("log is incomplete")
	ErrInsufficientMasters = errors.New("not enough masters to recover partitions")
	ErrRetrievalTimeout    = errors.New("recovery data retrieval timed out")
	ErrRetrievalFailed     = errors.New("recovery data retrieval failed")
	ErrInvalidPhase        = errors.New("operation not valid in current recovery phase")
	ErrRecoveryNotFound    = errors.New("recovery not found")
	ErrRecoveryInProgress  = errors.New("recovery already in progress")
	ErrInvalidTablet       = errors.New("invalid tablet")
)

// FatalError is an unrecoverable failure of one recovery attempt.
type FatalError struct {
	Op  string
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

func (e *FatalError) Is(target error) bool {
	return target == ErrFatal
}

// Fatal wraps err as a FatalError for op.
func Fatal(op string, err error) error {
	return &FatalError{Op: op, Err: err}
}

// IsFatal reports whether err is in the fatal category.
func IsFatal(err error) bool {
	return errors.Is(err, ErrFatal)
}

// RetrievalError reports a (partition, segment) pair whose data could not be
// fetched from any replica.
type RetrievalError struct {
	PartitionID uint64
	SegmentID   uint64
	Attempts    int
	Err         error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieve segment %d for partition %d failed after %d attempts: %v",
		e.SegmentID, e.PartitionID, e.Attempts, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

func (e *RetrievalError) Is(target error) bool {
	return target == ErrRetrievalFailed
}
