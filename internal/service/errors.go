package service

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Leganyst/production-scheduler/internal/capacity"
)

// toStatus переводит ошибки движка в коды gRPC.
func toStatus(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, capacity.ErrInvalid):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, capacity.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, capacity.ErrConflictingSnapshot):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Errorf(codes.Internal, "%s: %v", op, err)
	}
}
