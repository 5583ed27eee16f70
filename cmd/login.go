package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/arthax"
	"github.com/google/subcommands"
)

type loginCmd struct{}

func (*loginCmd) Name() string     { return "login" }
func (*loginCmd) Synopsis() string { return "set the phone number identifying you" }
func (*loginCmd) Usage() string {
	return `arthax login [<phone number>]

  Save the phone number sent with every request. It is asked on the terminal
  when not given. It replaces any number saved before.
`
}

func (c *loginCmd) SetFlags(f *flag.FlagSet) {}

func (c *loginCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := start(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer s.close()

	candidate := strings.Join(f.Args(), "")
	if candidate == "" {
		if candidate, err = stdin.PromptIdentity(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	id, err := s.Identity.Set(candidate)
	var ve *arthax.ValidationError
	if errors.As(err, &ve) {
		s.Notifications.Notify("Please enter a valid phone number.", arthax.KindError)
		return subcommands.ExitFailure
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error saving phone number: %v\n", err)
		return subcommands.ExitFailure
	}
	s.Notifications.Notify("Phone number saved.", arthax.KindSuccess)
	fmt.Printf("Logged in as %s on %s\n", id, s.cfg.APIURL)
	return subcommands.ExitSuccess
}
