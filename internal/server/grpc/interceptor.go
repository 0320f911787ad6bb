package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/authsignup/internal/common"
	pb "github.com/dmitrijs2005/authsignup/internal/proto"
	"github.com/dmitrijs2005/authsignup/internal/server/auth"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const operatorKey ctxKey = "operator"

// operatorMethods need an operator access token.
var operatorMethods = map[string]struct{}{
	pb.FullMethod(pb.MethodCreateContact): {},
	pb.FullMethod(pb.MethodGenerateToken): {},
	pb.FullMethod(pb.MethodGetSignupURL):  {},
	pb.FullMethod(pb.MethodSetParam):      {},
	pb.FullMethod(pb.MethodListParams):    {},
}

// OperatorFromContext returns the operator authenticated for this call.
func OperatorFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(operatorKey).(string)
	return v, ok
}

func firstMetadata(ctx context.Context, key string) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(key); len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if _, ok := operatorMethods[info.FullMethod]; !ok {
		return handler(ctx, req)
	}

	accessToken := firstMetadata(ctx, common.AccessTokenHeaderName)
	if accessToken == "" {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	operator, err := auth.GetOperatorFromToken(accessToken, s.jwtSecret)
	if err != nil {
		if errors.Is(err, common.ErrAccessTokenExpired) {
			return nil, status.Error(codes.Unauthenticated, common.ErrAccessTokenExpired.Error())
		}
		return nil, status.Error(codes.Unauthenticated, common.ErrInvalidAccessToken.Error())
	}

	return handler(context.WithValue(ctx, operatorKey, operator), req)
}

// loggingInterceptor tags every call with a request id (taken from the
// x-request-id header or generated), logs its outcome and records it in the
// request metrics.
func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	requestID := firstMetadata(ctx, common.RequestIDHeaderName)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	_ = grpc.SetHeader(ctx, metadata.Pairs(common.RequestIDHeaderName, requestID))

	log := s.logger.With("request_id", requestID, "method", info.FullMethod)
	start := time.Now()

	resp, err := handler(ctx, req)

	code := status.Code(err)
	elapsed := time.Since(start)
	s.metrics.Requests.With("method", info.FullMethod, "code", code.String()).Add(1)
	s.metrics.RequestDuration.With("method", info.FullMethod).Observe(elapsed.Seconds())

	args := []any{"code", code.String(), "duration", elapsed}
	if code == codes.Internal || code == codes.Unknown {
		log.Error(ctx, "call finished", args...)
	} else {
		log.Info(ctx, "call finished", args...)
	}

	return resp, err
}
