package services

import (
	"context"
	"errors"

	apperrors "github.com/Mayank561/ECOMMERCE-API/common/errors"
	"github.com/Mayank561/ECOMMERCE-API/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// parseID converts a hex id, reporting a malformed one as a validation error
// named after what the id refers to.
func parseID(hex, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperrors.Validation("Invalid "+what+" Id", err)
	}
	return id, nil
}

// storeErr maps a repository error to an application error. Not-found
// becomes notFoundMsg, anything unclassified becomes an internal error.
func storeErr(err error, notFoundMsg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NotFound(notFoundMsg)
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.Validation("duplicate value for a unique field", err)
	}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperrors.Internal(err)
}

func recordCount(ctx context.Context, m MetricsRecorder, name string) {
	if m == nil {
		return
	}
	_ = m.RecordCount(ctx, name, map[string]string{"Service": "storefront"})
}
