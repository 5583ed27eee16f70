package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/arthax/agent"
	"github.com/google/subcommands"
)

type chatCmd struct{}

func (*chatCmd) Name() string     { return "chat" }
func (*chatCmd) Synopsis() string { return "start a conversation with the assistant" }
func (*chatCmd) Usage() string {
	return `arthax chat [<message>...]

  Start an interactive conversation with the Artha-X assistant. Arguments are
  sent as the first message. Type 'bye' to exit.
`
}

func (c *chatCmd) SetFlags(f *flag.FlagSet) {}

func (c *chatCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var prompts []string
	if f.NArg() > 0 {
		prompts = append(prompts, strings.Join(f.Args(), " "))
	}

	s, err := start(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer s.close()

	if _, err := s.RequireIdentity(stdin); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	a := agent.New(os.Stdout, stdin.r, s.App)
	if err := a.Run(ctx, prompts...); err != nil {
		fmt.Fprintln(os.Stderr, "Chat failed:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
