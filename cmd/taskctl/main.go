// Command taskctl talks to the task manager from a terminal: it chats with
// the canned-reply assistant, lists users and prints the current task.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "taskctl",
		Short: "Command line client for the AI Task Manager",
		Long: `Command line client for the AI Task Manager.

Subcommands:
  chat        - Chat with the assistant (one-shot or interactive)
  users list  - List users without password hashes
  task show   - Print the current task`,
		SilenceUsage: true,
	}
	root.AddCommand(newChatCmd(), newUsersCmd(), newTaskCmd())
	return root
}
