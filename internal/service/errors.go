package service

import (
	"errors"
	"fmt"

	apperrors "github.com/captcha-dashboard/internal/errors"
	"github.com/captcha-dashboard/internal/storage"
)

// storeError translates a storage sentinel into the categorized error the API
// layer renders. Unknown errors become internal errors that keep the cause.
func storeError(err error, resource, id string) error {
	if err == nil {
		return nil
	}

	var catErr *apperrors.CategorizedError
	if errors.As(err, &catErr) {
		return catErr
	}

	switch {
	case errors.Is(err, storage.ErrNotFound):
		return apperrors.NewNotFoundError(resource, id)
	case errors.Is(err, storage.ErrAlreadyExists):
		return apperrors.NewConflictError(fmt.Sprintf("%s already exists: %s", resource, id))
	case errors.Is(err, storage.ErrJobBusy):
		return apperrors.NewConflictError(fmt.Sprintf("job %s is already being processed", id))
	case errors.Is(err, storage.ErrJobFinished):
		return apperrors.NewConflictError(fmt.Sprintf("job %s is already completed", id))
	}
	return apperrors.NewInternalError(fmt.Sprintf("failed to access %s", resource), err)
}
