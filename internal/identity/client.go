package identity

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/MikeMC777/tienda-ecom/internal/auth"
)

// Client resolves bearer tokens through a remote identity service. It
// satisfies the same contract as auth.Issuer.Resolve.
type Client struct {
	conn *grpc.ClientConn
}

func Dial(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial identity service: %w", err)
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Resolve(ctx context.Context, token string) (auth.Principal, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	out := new(structpb.Struct)
	err := c.conn.Invoke(ctx, ResolvePrincipalMethod, wrapperspb.String(token), out)
	switch status.Code(err) {
	case codes.OK:
		return decodePrincipal(out), nil
	case codes.Unauthenticated, codes.InvalidArgument:
		return auth.Principal{}, auth.ErrInvalidToken
	default:
		return auth.Principal{}, fmt.Errorf("resolve principal: %w", err)
	}
}

func (c *Client) Close() error { return c.conn.Close() }
