package repository

import (
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// notFoundOr maps Firestore's NotFound status onto ErrNotFound and wraps anything else.
func notFoundOr(err error, format string, args ...interface{}) error {
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
