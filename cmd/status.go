package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/arthax"
	"github.com/google/subcommands"
)

type statusCmd struct{}

func (*statusCmd) Name() string     { return "status" }
func (*statusCmd) Synopsis() string { return "check that the service is reachable" }
func (*statusCmd) Usage() string {
	return `arthax status

  Ask the configured service whether it is running.
`
}

func (c *statusCmd) SetFlags(f *flag.FlagSet) {}

func (c *statusCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	msg, err := arthax.NewGateway(cfg.APIURL, arthax.WithTimeout(cfg.Timeout)).Health(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s is not available: %v\n", cfg.APIURL, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("%s is %s: %s\n", cfg.APIURL, arthax.StatusHealthy, msg)
	return subcommands.ExitSuccess
}
