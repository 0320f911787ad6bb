// Package client is the signupctl side of the SignupService.
//
// SignupClient owns the gRPC connection, attaches the operator access token
// to outgoing calls via an interceptor and maps gRPC statuses back onto the
// sentinel errors in internal/common, so callers can match them with
// errors.Is. Transport failures surface as ErrUnavailable, rejected
// credentials as ErrUnauthorized.
package client
