package chatrpc

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ashureev/taskpilot/internal/chat"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client calls a remote ChatService. It implements chat.Dispatcher.
type Client struct {
	conn *grpc.ClientConn
}

var _ chat.Dispatcher = (*Client)(nil)

// Dial builds a client for addr. No network I/O happens until the first call.
func Dial(addr string, opts ...grpc.DialOption) (*Client, error) {
	if len(opts) == 0 {
		opts = []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("create chat rpc client for %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// Respond sends one message and returns the canned reply.
func (c *Client) Respond(ctx context.Context, message string) (string, error) {
	out := new(wrapperspb.StringValue)
	if err := c.conn.Invoke(ctx, respondMethod, wrapperspb.String(message), out); err != nil {
		return "", err
	}
	return out.GetValue(), nil
}

// Dispatch implements chat.Dispatcher. Status errors from the server are
// mapped onto the same payloads the HTTP action returns.
func (c *Client) Dispatch(ctx context.Context, message string) (string, error) {
	reply, err := c.Respond(ctx, message)
	if err == nil {
		return reply, nil
	}

	st, ok := status.FromError(err)
	if !ok {
		return "", err
	}
	switch st.Code() {
	case codes.InvalidArgument:
		return "", &chat.ReplyError{Status: http.StatusBadRequest, Message: st.Message()}
	case codes.Internal:
		return "", &chat.ReplyError{Status: http.StatusInternalServerError, Message: st.Message()}
	default:
		return "", fmt.Errorf("chat rpc: %w", err)
	}
}

// Close tears down the underlying connection.
func (c *Client) Close() error {
	if err := c.conn.Close(); err != nil {
		slog.Debug("failed to close chat rpc connection", "error", err)
		return err
	}
	return nil
}
