// Package proto describes the SignupService wire contract. Requests and
// responses are google.protobuf.Struct values keyed by the Field* constants,
// so the service is carried by the stock protobuf codec without generated
// message types.
package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "authsignup.v1.SignupService"

const (
	MethodCreateContact   = "CreateContact"
	MethodGenerateToken   = "GenerateToken"
	MethodGetSignupURL    = "GetSignupURL"
	MethodRetrieveContact = "RetrieveContact"
	MethodSignup          = "Signup"
	MethodAuthSignup      = "AuthSignup"
	MethodSetParam        = "SetParam"
	MethodListParams      = "ListParams"
)

// Message field names.
const (
	FieldName         = "name"
	FieldContactID    = "contact_id"
	FieldToken        = "token"
	FieldExpiresAt    = "expires_at"
	FieldNeverExpires = "never_expires"
	FieldURL          = "url"
	FieldLogin        = "login"
	FieldPassword     = "password"
	FieldTenantID     = "tenant_id"
	FieldKey          = "key"
	FieldValue        = "value"
	FieldParams       = "params"
)

// FullMethod returns the "/service/method" path used on the wire.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// SignupServiceServer is implemented by the gRPC server.
type SignupServiceServer interface {
	CreateContact(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GenerateToken(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSignupURL(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RetrieveContact(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Signup(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AuthSignup(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetParam(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListParams(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(SignupServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func methodDesc(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(SignupServiceServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*structpb.Struct))
			})
		},
	}
}

var SignupServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SignupServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		methodDesc(MethodCreateContact, SignupServiceServer.CreateContact),
		methodDesc(MethodGenerateToken, SignupServiceServer.GenerateToken),
		methodDesc(MethodGetSignupURL, SignupServiceServer.GetSignupURL),
		methodDesc(MethodRetrieveContact, SignupServiceServer.RetrieveContact),
		methodDesc(MethodSignup, SignupServiceServer.Signup),
		methodDesc(MethodAuthSignup, SignupServiceServer.AuthSignup),
		methodDesc(MethodSetParam, SignupServiceServer.SetParam),
		methodDesc(MethodListParams, SignupServiceServer.ListParams),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "internal/proto/signup.proto",
}

func RegisterSignupServiceServer(s grpc.ServiceRegistrar, srv SignupServiceServer) {
	s.RegisterService(&SignupServiceDesc, srv)
}

// SignupServiceClient calls SignupService over a client connection.
type SignupServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewSignupServiceClient(cc grpc.ClientConnInterface) *SignupServiceClient {
	return &SignupServiceClient{cc: cc}
}

// Call invokes method with req and returns the response struct.
func (c *SignupServiceClient) Call(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// NewMessage builds a Struct from plain Go values (string, bool, float64,
// nil). It panics on unsupported values, which is a programming error.
func NewMessage(fields map[string]any) *structpb.Struct {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		panic(err)
	}
	return s
}

// GetString returns the string field key of m, or "" when absent.
func GetString(m *structpb.Struct, key string) string {
	return m.GetFields()[key].GetStringValue()
}

// GetBool returns the bool field key of m, or false when absent.
func GetBool(m *structpb.Struct, key string) bool {
	return m.GetFields()[key].GetBoolValue()
}

// GetStringMap returns the nested struct field key of m as a string map.
// Non-string values are skipped.
func GetStringMap(m *structpb.Struct, key string) map[string]string {
	out := map[string]string{}
	for k, v := range m.GetFields()[key].GetStructValue().GetFields() {
		if sv, ok := v.GetKind().(*structpb.Value_StringValue); ok {
			out[k] = sv.StringValue
		}
	}
	return out
}
