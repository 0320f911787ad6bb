package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/authsignup/internal/common"
	pb "github.com/dmitrijs2005/authsignup/internal/proto"
	"github.com/dmitrijs2005/authsignup/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// audit records an operator action together with the operator that made it.
func (s *GRPCServer) audit(ctx context.Context, msg string, args ...any) {
	op, _ := OperatorFromContext(ctx)
	s.logger.Info(ctx, msg, append([]any{"operator", op}, args...)...)
}

func (s *GRPCServer) CreateContact(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	c, err := s.tokens.CreateContact(ctx, pb.GetString(req, pb.FieldName))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	s.audit(ctx, "contact created", "contact_id", c.ID)
	return pb.NewMessage(map[string]any{pb.FieldContactID: c.ID}), nil
}

func (s *GRPCServer) GenerateToken(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	contactID := pb.GetString(req, pb.FieldContactID)
	if contactID == "" {
		return nil, status.Error(codes.InvalidArgument, "contact_id is required")
	}

	exp, err := s.expiration(req)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.GenerateToken(ctx, contactID, exp)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	var expiresAt any
	if exp != nil {
		expiresAt = exp.UTC().Format(time.RFC3339)
	}
	s.audit(ctx, "signup token issued", "contact_id", contactID, "expires_at", expiresAt)
	return pb.NewMessage(map[string]any{pb.FieldToken: token, pb.FieldExpiresAt: expiresAt}), nil
}

// expiration picks the token expiration: never_expires wins, then an explicit
// RFC 3339 expires_at, then the configured validity. An explicit expiration
// must lie in the future.
func (s *GRPCServer) expiration(req *structpb.Struct) (*time.Time, error) {
	if pb.GetBool(req, pb.FieldNeverExpires) {
		return nil, nil
	}
	if v := pb.GetString(req, pb.FieldExpiresAt); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "expires_at: %v", err)
		}
		if !t.After(s.now()) {
			return nil, status.Errorf(codes.InvalidArgument, "expires_at %s is not in the future", v)
		}
		return &t, nil
	}
	if s.signupTokenValidity > 0 {
		t := s.now().Add(s.signupTokenValidity)
		return &t, nil
	}
	return nil, nil
}

func (s *GRPCServer) GetSignupURL(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	contactID := pb.GetString(req, pb.FieldContactID)
	if contactID == "" {
		return nil, status.Error(codes.InvalidArgument, "contact_id is required")
	}

	u, err := s.tokens.GetSignupURL(ctx, contactID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	s.audit(ctx, "signup url issued", "contact_id", contactID)
	return pb.NewMessage(map[string]any{pb.FieldURL: u}), nil
}

func (s *GRPCServer) RetrieveContact(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := s.tokens.RetrieveContact(ctx, pb.GetString(req, pb.FieldToken))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return pb.NewMessage(map[string]any{pb.FieldContactID: id}), nil
}

func (s *GRPCServer) Signup(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	v := services.SignupValues{
		Login:    pb.GetString(req, pb.FieldLogin),
		Password: pb.GetString(req, pb.FieldPassword),
		Name:     pb.GetString(req, pb.FieldName),
	}

	res, err := s.signup.Signup(ctx, v, pb.GetString(req, pb.FieldToken))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return resultMessage(res), nil
}

func (s *GRPCServer) AuthSignup(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	res, err := s.signup.AuthSignup(ctx,
		pb.GetString(req, pb.FieldName),
		pb.GetString(req, pb.FieldLogin),
		pb.GetString(req, pb.FieldPassword))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return resultMessage(res), nil
}

func (s *GRPCServer) SetParam(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	key, value := pb.GetString(req, pb.FieldKey), pb.GetString(req, pb.FieldValue)
	if err := s.params.SetParam(ctx, key, value); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	s.audit(ctx, "parameter changed", "key", key, "value", value)
	return pb.NewMessage(nil), nil
}

func (s *GRPCServer) ListParams(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	list, err := s.params.List(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	params := make(map[string]any, len(list))
	for _, p := range list {
		params[p.Key] = p.Value
	}
	return pb.NewMessage(map[string]any{pb.FieldParams: params}), nil
}

func resultMessage(r *services.SignupResult) *structpb.Struct {
	return pb.NewMessage(map[string]any{
		pb.FieldTenantID: r.TenantID,
		pb.FieldLogin:    r.Login,
		pb.FieldPassword: r.Password,
	})
}

var statusCodes = []struct {
	err  error
	code codes.Code
}{
	{common.ErrInvalidToken, codes.InvalidArgument},
	{common.ErrMissingField, codes.InvalidArgument},
	{common.ErrInvalidParameter, codes.InvalidArgument},
	{common.ErrTokenExpired, codes.FailedPrecondition},
	{common.ErrMissingTemplate, codes.FailedPrecondition},
	{common.ErrSignupNotAllowed, codes.PermissionDenied},
	{common.ErrAccessDenied, codes.Unauthenticated},
	{common.ErrorNotFound, codes.NotFound},
	{common.ErrorAlreadyExists, codes.AlreadyExists},
}

// toStatus maps service errors onto gRPC codes. Domain errors keep their
// message; anything unrecognised is logged and reported as internal.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	for _, m := range statusCodes {
		if errors.Is(err, m.err) {
			return status.Error(m.code, m.err.Error())
		}
	}
	s.logger.Error(ctx, "request failed", "error", err)
	return status.Error(codes.Internal, common.ErrorInternal.Error())
}
