package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/authsignup/internal/logging"
	pb "github.com/dmitrijs2005/authsignup/internal/proto"
	"github.com/dmitrijs2005/authsignup/internal/server/metrics"
	"github.com/dmitrijs2005/authsignup/internal/server/models"
	"github.com/dmitrijs2005/authsignup/internal/server/services"
	"google.golang.org/grpc"
)

type tokenSvc interface {
	CreateContact(ctx context.Context, name string) (*models.Contact, error)
	GenerateToken(ctx context.Context, contactID string, expiration *time.Time) (string, error)
	GetSignupURL(ctx context.Context, contactID string) (string, error)
	RetrieveContact(ctx context.Context, token string) (string, error)
}

type signupSvc interface {
	Signup(ctx context.Context, v services.SignupValues, token string) (*services.SignupResult, error)
	AuthSignup(ctx context.Context, name, login, password string) (*services.SignupResult, error)
}

type paramSvc interface {
	SetParam(ctx context.Context, key, value string) error
	List(ctx context.Context) ([]models.Parameter, error)
}

type GRPCServer struct {
	address   string
	tokens    tokenSvc
	signup    signupSvc
	params    paramSvc
	logger    logging.Logger
	metrics   *metrics.Metrics
	jwtSecret []byte

	// signupTokenValidity is applied when GenerateToken gets no explicit
	// expiration. Zero issues tokens that never expire.
	signupTokenValidity time.Duration
	now                 func() time.Time
}

func NewGRPCServer(a string, l logging.Logger, mt *metrics.Metrics, ts tokenSvc, ss signupSvc, ps paramSvc, secretKey string, signupTokenValidity time.Duration) *GRPCServer {
	return &GRPCServer{
		address:             a,
		logger:              l.With("module", "grpc_server"),
		metrics:             mt,
		tokens:              ts,
		signup:              ss,
		params:              ps,
		jwtSecret:           []byte(secretKey),
		signupTokenValidity: signupTokenValidity,
		now:                 time.Now,
	}
}

func (s *GRPCServer) newGRPCServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	pb.RegisterSignupServiceServer(srv, s)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newGRPCServer()

	served := make(chan struct{})
	defer close(served)

	go func() {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Stopping gRPC server...")
			srv.GracefulStop()
		case <-served:
		}
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	return srv.Serve(lis)
}
