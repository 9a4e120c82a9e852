package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ashureev/taskpilot/internal/chat"
	"github.com/ashureev/taskpilot/internal/chatrpc"
	"github.com/ashureev/taskpilot/internal/domain"
	"github.com/spf13/cobra"
)

type chatOptions struct {
	server  string
	grpc    string
	delay   time.Duration
	timeout time.Duration
}

func newChatCmd() *cobra.Command {
	opts := &chatOptions{}
	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Chat with the assistant",
		Long: `Send one message and print the reply, or start an interactive chat
when no message is given. Type /quit or send EOF to leave.

Without --server or --grpc the assistant runs in process.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, opts, args)
		},
	}
	cmd.Flags().StringVar(&opts.server, "server", "", "base URL of a running server, e.g. http://localhost:8080")
	cmd.Flags().StringVar(&opts.grpc, "grpc", "", "address of the gRPC chat service, e.g. localhost:9090")
	cmd.Flags().DurationVar(&opts.delay, "delay", chat.DefaultReplyDelay, "reply delay for the in-process assistant")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "per-message timeout")
	cmd.MarkFlagsMutuallyExclusive("server", "grpc")
	return cmd
}

func newDispatcher(opts *chatOptions) (chat.Dispatcher, func(), error) {
	switch {
	case opts.server != "":
		return chat.NewClient(opts.server, nil), func() {}, nil
	case opts.grpc != "":
		c, err := chatrpc.Dial(opts.grpc)
		if err != nil {
			return nil, nil, err
		}
		return c, func() { _ = c.Close() }, nil
	default:
		return chat.NewLocalDispatcher(chat.NewService(opts.delay)), func() {}, nil
	}
}

func runChat(cmd *cobra.Command, opts *chatOptions, args []string) error {
	d, closeFn, err := newDispatcher(opts)
	if err != nil {
		return err
	}
	defer closeFn()

	out := cmd.OutOrStdout()
	sess := chat.NewSession(d, chat.SessionOptions{
		Timeout: opts.timeout,
		OnChange: func(msg domain.ChatMessage, _ bool) {
			if msg.Role == domain.RoleAssistant {
				fmt.Fprintln(out, msg.Content)
			}
		},
	})
	defer sess.Close()

	if len(args) > 0 {
		if err := submitAndWait(cmd.Context(), sess, strings.Join(args, " ")); err != nil {
			return err
		}
		return lastReplyError(sess)
	}
	return chatREPL(cmd.Context(), cmd.InOrStdin(), out, sess)
}

func submitAndWait(ctx context.Context, sess *chat.Session, text string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := sess.Submit(ctx, text); err != nil {
		return err
	}
	sess.Wait()
	return nil
}

// lastReplyError turns a failed dispatch into a non-zero exit for one-shot use.
func lastReplyError(sess *chat.Session) error {
	if err := sess.LastError(); err != nil {
		return fmt.Errorf("chat request failed: %w", err)
	}
	return nil
}

func chatREPL(ctx context.Context, in io.Reader, out io.Writer, sess *chat.Session) error {
	fmt.Fprintln(out, "Chat Friend is online. Type /quit to leave.")
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "/quit" {
			return nil
		}

		err := submitAndWait(ctx, sess, line)
		switch {
		case errors.Is(err, chat.ErrEmptyMessage):
			continue
		case err != nil:
			return err
		}
	}
}
