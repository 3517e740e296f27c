package service

import (
	"errors"

	"github.com/Lixing-Zhang/pizza-api/internal/apperr"
	"github.com/Lixing-Zhang/pizza-api/internal/repository"
)

// storeError classifies a store failure. notFound is the message used when the
// record is absent and failed the one used for any other failure.
func storeError(err error, notFound, failed string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperr.Wrap(apperr.NotFound, notFound, err)
	case errors.Is(err, repository.ErrTableNotFound):
		return apperr.Wrap(apperr.StorageUnavailable, "Database table not found", err)
	default:
		return apperr.Wrap(apperr.StorageError, failed, err)
	}
}
