// Package identity exposes principal resolution over gRPC so that other
// services can authenticate bearer tokens without holding the signing key.
package identity

import (
	"context"
	"errors"
	"log"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/MikeMC777/tienda-ecom/internal/auth"
	"github.com/MikeMC777/tienda-ecom/internal/user"
)

const (
	ServiceName            = "identity.v1.IdentityService"
	ResolvePrincipalMethod = "/" + ServiceName + "/ResolvePrincipal"
)

// IdentityServer is the server API of identity.v1.IdentityService.
type IdentityServer interface {
	ResolvePrincipal(ctx context.Context, token *wrapperspb.StringValue) (*structpb.Struct, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*IdentityServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ResolvePrincipal", Handler: resolvePrincipalHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "identity/v1/identity.proto",
}

func resolvePrincipalHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IdentityServer).ResolvePrincipal(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ResolvePrincipalMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(IdentityServer).ResolvePrincipal(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func RegisterIdentityServer(s grpc.ServiceRegistrar, srv IdentityServer) {
	s.RegisterService(&serviceDesc, srv)
}

// TokenResolver verifies an access token.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (auth.Principal, error)
}

// UserGetter reloads the account behind a token.
type UserGetter interface {
	Get(ctx context.Context, id string) (*user.User, error)
}

type Server struct {
	tokens TokenResolver
	users  UserGetter
}

// NewServer resolves tokens with tokens. When users is not nil the principal
// is rebuilt from the stored account, so deactivated users are rejected even
// while their token is still valid.
func NewServer(tokens TokenResolver, users UserGetter) *Server {
	return &Server{tokens: tokens, users: users}
}

func (s *Server) ResolvePrincipal(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	if in.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "token is required")
	}
	p, err := s.tokens.Resolve(ctx, in.GetValue())
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrWrongType) {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}
		return nil, status.Error(codes.Internal, err.Error())
	}

	if s.users != nil {
		u, err := s.users.Get(ctx, p.UserID)
		if errors.Is(err, user.ErrNotFound) {
			return nil, status.Error(codes.Unauthenticated, "user not found or inactive")
		}
		if err != nil {
			return nil, status.Error(codes.Internal, err.Error())
		}
		p = auth.Principal{UserID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName, IsStaff: u.IsStaff}
	}
	return encodePrincipal(p)
}

func encodePrincipal(p auth.Principal) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"user_id":    p.UserID,
		"email":      p.Email,
		"first_name": p.FirstName,
		"last_name":  p.LastName,
		"is_staff":   p.IsStaff,
	})
}

func decodePrincipal(s *structpb.Struct) auth.Principal {
	f := s.GetFields()
	return auth.Principal{
		UserID:    f["user_id"].GetStringValue(),
		Email:     f["email"].GetStringValue(),
		FirstName: f["first_name"].GetStringValue(),
		LastName:  f["last_name"].GetStringValue(),
		IsStaff:   f["is_staff"].GetBoolValue(),
	}
}

// LogUnary logs every unary call with its status code.
func LogUnary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		log.Printf("[grpc] %s code=%s dur=%s", info.FullMethod, status.Code(err), time.Since(start))
		return resp, err
	}
}
