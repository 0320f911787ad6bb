package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// operator access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// RequestIDHeaderName is the gRPC metadata key carrying the request id
// assigned by the server logging interceptor.
const RequestIDHeaderName = "x-request-id"
