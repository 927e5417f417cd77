package order

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	userpb "github.com/albaqer/gemstone-ecom/internal/userpb"
)

const rpcTimeout = 3 * time.Second

// Ext is the order service's view of the user directory.
type Ext struct {
	User userpb.UserDirectoryClient
	conn *grpc.ClientConn
}

func NewExt(userAddr string) (*Ext, error) {
	// Non-blocking: the connection is established on first RPC.
	conn, err := grpc.NewClient(userAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	return &Ext{User: userpb.NewUserDirectoryClient(conn), conn: conn}, nil
}

func (e *Ext) Close() error {
	if e.conn == nil {
		return nil
	}
	return e.conn.Close()
}

func (e *Ext) ValidateUser(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, rpcTimeout)
	defer cancel()
	out, err := e.User.ValidateUser(ctx, wrapperspb.String(id), grpc.WaitForReady(true))
	if err != nil {
		return false, err
	}
	return out.GetValue(), nil
}

func (e *Ext) Role(ctx context.Context, id string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, rpcTimeout)
	defer cancel()
	out, err := e.User.GetUserRole(ctx, wrapperspb.String(id), grpc.WaitForReady(true))
	if status.Code(err) == codes.NotFound {
		return "", ErrUnknownUser
	}
	if err != nil {
		return "", err
	}
	return out.GetValue(), nil
}
