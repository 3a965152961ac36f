package identity

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/MikeMC777/tienda-ecom/internal/auth"
	"github.com/MikeMC777/tienda-ecom/internal/user"
)

type users map[string]*user.User

func (u users) Get(_ context.Context, id string) (*user.User, error) {
	if v, ok := u[id]; ok && v.IsActive {
		return v, nil
	}
	return nil, user.ErrNotFound
}

func newIssuer(t *testing.T) *auth.Issuer {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return auth.NewIssuer("secret", time.Hour, time.Hour, auth.NewRedisRevoker(rdb))
}

func serve(t *testing.T, srv *Server) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer(grpc.UnaryInterceptor(LogUnary()))
	RegisterIdentityServer(s, srv)
	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	c, err := Dial("passthrough:///bufnet", grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

var ana = auth.Principal{UserID: "u-1", Email: "ana@example.com", FirstName: "Ana", LastName: "Pérez", IsStaff: true}

func TestResolvePrincipal_RoundTrip(t *testing.T) {
	iss := newIssuer(t)
	c := serve(t, NewServer(iss, nil))

	pair, err := iss.Issue(ana)
	require.NoError(t, err)

	p, err := c.Resolve(context.Background(), pair.Access)
	require.NoError(t, err)
	assert.Equal(t, ana, p)

	_, err = c.Resolve(context.Background(), pair.Refresh)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = c.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestResolvePrincipal_ReloadsUser(t *testing.T) {
	iss := newIssuer(t)
	store := users{"u-1": {ID: "u-1", Email: "ana@example.com", FirstName: "Ana María", IsActive: true}}
	c := serve(t, NewServer(iss, store))

	pair, err := iss.Issue(ana)
	require.NoError(t, err)

	p, err := c.Resolve(context.Background(), pair.Access)
	require.NoError(t, err)
	assert.Equal(t, "Ana María", p.FirstName)
	assert.False(t, p.IsStaff)

	store["u-1"].IsActive = false
	_, err = c.Resolve(context.Background(), pair.Access)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestServer_StatusCodes(t *testing.T) {
	srv := NewServer(newIssuer(t), nil)

	_, err := srv.ResolvePrincipal(context.Background(), wrapperspb.String(""))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = srv.ResolvePrincipal(context.Background(), wrapperspb.String("garbage"))
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestHealth(t *testing.T) {
	c := serve(t, NewServer(newIssuer(t), nil))

	resp, err := healthpb.NewHealthClient(c.conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
