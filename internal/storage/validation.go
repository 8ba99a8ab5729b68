package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/creditrag/internal/model"
	"github.com/Veraticus/creditrag/internal/service"
)

// Validation errors.
var (
	ErrNilContext      = errors.New("context cannot be nil")
	ErrEmptyString     = errors.New("string parameter cannot be empty")
	ErrNilParameter    = errors.New("parameter cannot be nil")
	ErrInvalidVector   = errors.New("invalid vector record")
	ErrInvalidDispute  = errors.New("invalid dispute record")
	ErrInvalidQueryArg = errors.New("invalid query argument")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateVectorRecord(rec *service.VectorRecord) error {
	if rec.Chunk.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidVector)
	}
	if rec.Chunk.Namespace == "" {
		return fmt.Errorf("%w: missing namespace", ErrInvalidVector)
	}
	if len(rec.Embedding) == 0 {
		return fmt.Errorf("%w: empty embedding", ErrInvalidVector)
	}
	return nil
}

func validateDisputeRecord(rec *model.DisputeRecord) error {
	if rec == nil {
		return fmt.Errorf("%w: dispute record", ErrNilParameter)
	}
	if !rec.DisputeType.IsValid() {
		return fmt.Errorf("%w: unknown dispute type %q", ErrInvalidDispute, rec.DisputeType)
	}
	return nil
}
