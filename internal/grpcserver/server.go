package grpcserver

import (
	"context"
	"errors"
	"io"

	"github.com/kaphack/guest-concierge-pipeline/internal/core"
	apperrors "github.com/kaphack/guest-concierge-pipeline/internal/errors"
	"github.com/kaphack/guest-concierge-pipeline/internal/logger"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Processor runs one inbound guest message.
type Processor interface {
	ProcessMessage(ctx context.Context, in core.ProcessMessageInput) (*core.ConciergeResponse, error)
}

// Dispatcher serializes work per key.
type Dispatcher interface {
	Dispatch(key string, fn func()) error
}

type ConversationServer struct {
	processor  Processor
	dispatcher Dispatcher
}

func NewConversationServer(processor Processor, dispatcher Dispatcher) *ConversationServer {
	return &ConversationServer{processor: processor, dispatcher: dispatcher}
}

type result struct {
	resp *core.ConciergeResponse
	err  error
}

// Converse answers each inbound message in order. Messages for the same guest
// arriving on other streams are processed on the same worker.
func (s *ConversationServer) Converse(stream ConverseServerStream) error {
	ctx := stream.Context()
	logger.Debug().Msg("Stream started")

	for {
		msg, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			logger.Warn().Err(err).Msg("stream recv error")
			return err
		}

		var in core.ProcessMessageInput
		if err := fromStruct(msg, &in); err != nil {
			return status.Errorf(codes.InvalidArgument, "invalid message: %v", err)
		}
		if in.GuestProfile == nil || in.GuestProfile.ID == "" {
			return status.Error(codes.InvalidArgument, "guestProfile.id is required")
		}

		resp, err := s.process(ctx, in)
		if err != nil {
			return toStatus(err)
		}

		out, err := toStruct(resp)
		if err != nil {
			return status.Errorf(codes.Internal, "failed to encode response: %v", err)
		}
		if err := stream.Send(out); err != nil {
			return err
		}
	}
}

func (s *ConversationServer) process(ctx context.Context, in core.ProcessMessageInput) (*core.ConciergeResponse, error) {
	if s.dispatcher == nil {
		return s.processor.ProcessMessage(ctx, in)
	}

	done := make(chan result, 1)
	err := s.dispatcher.Dispatch(in.GuestProfile.ID, func() {
		resp, err := s.processor.ProcessMessage(ctx, in)
		done <- result{resp: resp, err: err}
	})
	if err != nil {
		return nil, apperrors.NewUnavailableError("worker pool unavailable", err)
	}

	select {
	case r := <-done:
		return r.resp, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeValidation:
		return status.Error(codes.InvalidArgument, err.Error())
	case apperrors.ErrorTypeNotFound:
		return status.Error(codes.NotFound, err.Error())
	case apperrors.ErrorTypeUnavailable:
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
