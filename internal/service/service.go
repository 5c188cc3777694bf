package service

import (
	"context"
	"errors"
	"time"

	"naxospos/internal/apierror"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// runTx executes fn inside a GORM transaction bound to ctx.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}

// surface passes typed errors through and turns anything else into an opaque
// INTERNAL error after logging the cause.
func surface(op string, err error) error {
	if err == nil {
		return nil
	}
	var apiErr *apierror.Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	log.Error().Err(err).Str("op", op).Msg("persistence failure")
	return apierror.Internal(err)
}

// notFoundOr maps gorm.ErrRecordNotFound to a NOT_FOUND error with msg and
// leaves any other error untouched.
func notFoundOr(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierror.NotFound(msg)
	}
	return err
}

func utcNow() time.Time { return time.Now().UTC() }
