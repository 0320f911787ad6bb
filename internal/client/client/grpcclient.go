package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/authsignup/internal/common"
	pb "github.com/dmitrijs2005/authsignup/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// caller is the subset of pb.SignupServiceClient used here.
type caller interface {
	Call(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

// Result mirrors the signup response: the tenant and the credentials the
// caller should log in with.
type Result struct {
	TenantID string
	Login    string
	Password string
}

// Token is a freshly issued signup token. ExpiresAt is nil for tokens that
// never expire.
type Token struct {
	Value     string
	ExpiresAt *time.Time
}

type SignupClient struct {
	endpointURL string
	timeout     time.Duration
	conn        *grpc.ClientConn
	client      caller

	mu          sync.RWMutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *SignupClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := s.AccessToken(); token != "" {
		ctx = withAccessToken(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewSignupClient dials endpointURL lazily; no RPC is made until the first
// call. timeout bounds every call when positive.
func NewSignupClient(endpointURL string, timeout time.Duration) (*SignupClient, error) {
	c := &SignupClient{endpointURL: endpointURL, timeout: timeout}
	if err := c.initGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *SignupClient) initGRPCClient() error {
	conn, err := grpc.NewClient(s.endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor))
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = pb.NewSignupServiceClient(conn)
	return nil
}

func (s *SignupClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// SetAccessToken sets the operator token sent with subsequent calls.
func (s *SignupClient) SetAccessToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = token
}

func (s *SignupClient) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *SignupClient) call(ctx context.Context, method string, fields map[string]any) (*structpb.Struct, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp, err := s.client.Call(ctx, method, pb.NewMessage(fields))
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *SignupClient) CreateContact(ctx context.Context, name string) (string, error) {
	resp, err := s.call(ctx, pb.MethodCreateContact, map[string]any{pb.FieldName: name})
	if err != nil {
		return "", err
	}
	return pb.GetString(resp, pb.FieldContactID), nil
}

// GenerateToken issues a new token for contactID. With never set the token
// has no expiration; otherwise expiresAt is used, or the server default when
// it is nil.
func (s *SignupClient) GenerateToken(ctx context.Context, contactID string, expiresAt *time.Time, never bool) (*Token, error) {
	fields := map[string]any{pb.FieldContactID: contactID}
	if never {
		fields[pb.FieldNeverExpires] = true
	} else if expiresAt != nil {
		fields[pb.FieldExpiresAt] = expiresAt.UTC().Format(time.RFC3339)
	}

	resp, err := s.call(ctx, pb.MethodGenerateToken, fields)
	if err != nil {
		return nil, err
	}

	t := &Token{Value: pb.GetString(resp, pb.FieldToken)}
	if v := pb.GetString(resp, pb.FieldExpiresAt); v != "" {
		exp, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, fmt.Errorf("expires_at: %w", err)
		}
		t.ExpiresAt = &exp
	}
	return t, nil
}

func (s *SignupClient) GetSignupURL(ctx context.Context, contactID string) (string, error) {
	resp, err := s.call(ctx, pb.MethodGetSignupURL, map[string]any{pb.FieldContactID: contactID})
	if err != nil {
		return "", err
	}
	return pb.GetString(resp, pb.FieldURL), nil
}

// SetParam stores a server parameter. The server validates the key and value.
func (s *SignupClient) SetParam(ctx context.Context, key, value string) error {
	_, err := s.call(ctx, pb.MethodSetParam, map[string]any{pb.FieldKey: key, pb.FieldValue: value})
	return err
}

func (s *SignupClient) ListParams(ctx context.Context) (map[string]string, error) {
	resp, err := s.call(ctx, pb.MethodListParams, nil)
	if err != nil {
		return nil, err
	}
	return pb.GetStringMap(resp, pb.FieldParams), nil
}

// RetrieveContact resolves token to a contact id. An unknown token yields
// an empty id and no error.
func (s *SignupClient) RetrieveContact(ctx context.Context, token string) (string, error) {
	resp, err := s.call(ctx, pb.MethodRetrieveContact, map[string]any{pb.FieldToken: token})
	if errors.Is(err, common.ErrorNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return pb.GetString(resp, pb.FieldContactID), nil
}

func (s *SignupClient) Signup(ctx context.Context, login, password, name, token string) (*Result, error) {
	resp, err := s.call(ctx, pb.MethodSignup, map[string]any{
		pb.FieldLogin:    login,
		pb.FieldPassword: password,
		pb.FieldName:     name,
		pb.FieldToken:    token,
	})
	if err != nil {
		return nil, err
	}
	return toResult(resp), nil
}

func (s *SignupClient) AuthSignup(ctx context.Context, name, login, password string) (*Result, error) {
	resp, err := s.call(ctx, pb.MethodAuthSignup, map[string]any{
		pb.FieldName:     name,
		pb.FieldLogin:    login,
		pb.FieldPassword: password,
	})
	if err != nil {
		return nil, err
	}
	return toResult(resp), nil
}

func toResult(m *structpb.Struct) *Result {
	return &Result{
		TenantID: pb.GetString(m, pb.FieldTenantID),
		Login:    pb.GetString(m, pb.FieldLogin),
		Password: pb.GetString(m, pb.FieldPassword),
	}
}

// domainErrors are recognised by status message, which the server sets to
// the sentinel's text.
var domainErrors = []error{
	common.ErrInvalidToken,
	common.ErrTokenExpired,
	common.ErrMissingField,
	common.ErrInvalidParameter,
	common.ErrMissingTemplate,
	common.ErrSignupNotAllowed,
	common.ErrAccessDenied,
	common.ErrorNotFound,
	common.ErrorAlreadyExists,
}

func (s *SignupClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("rpc error: %w", err)
	}
	for _, e := range domainErrors {
		if st.Message() == e.Error() {
			return e
		}
	}
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
