package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/arthax"
	"github.com/google/subcommands"
)

// featureCmd triggers one analysis feature. Its flags are the feature fields.
type featureCmd struct {
	feature arthax.Feature
	values  map[string]*string
}

func (c *featureCmd) Name() string     { return c.feature.Name }
func (c *featureCmd) Synopsis() string { return strings.ToLower(c.feature.Title) }
func (c *featureCmd) Usage() string {
	var b strings.Builder
	fmt.Fprintf(&b, "arthax %s", c.feature.Name)
	for _, f := range c.feature.Fields {
		fmt.Fprintf(&b, " [-%s <%s>]", flagName(f.Name), f.Name)
	}
	if text, ok := c.textField(); ok {
		fmt.Fprintf(&b, " [%s...]", text.Name)
	}
	fmt.Fprintf(&b, "\n\n  Request the %s from the Artha-X service.\n", strings.ToLower(c.feature.Title))
	return b.String()
}

func flagName(field string) string { return strings.ReplaceAll(field, "_", "-") }

// textField returns the only field of a feature, when it is free text that can
// be given as arguments.
func (c *featureCmd) textField() (arthax.Field, bool) {
	if len(c.feature.Fields) == 1 && c.feature.Fields[0].Kind == arthax.Text {
		return c.feature.Fields[0], true
	}
	return arthax.Field{}, false
}

func (c *featureCmd) SetFlags(f *flag.FlagSet) {
	c.values = make(map[string]*string, len(c.feature.Fields))
	for _, field := range c.feature.Fields {
		usage := field.Message
		if field.Default != "" {
			usage = fmt.Sprintf("%s (defaults to %q)", field.Name, field.Default)
		}
		c.values[field.Name] = f.String(flagName(field.Name), "", usage)
	}
}

func (c *featureCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	values := make(arthax.Values, len(c.values))
	for name, v := range c.values {
		values[name] = *v
	}
	if text, ok := c.textField(); ok && strings.TrimSpace(values[text.Name]) == "" {
		values[text.Name] = strings.Join(f.Args(), " ")
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
	if err := s.Dispatch(ctx, c.feature.Name, values); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	s.Wait()

	p, _ := s.Presenter(c.feature.Name)
	if p.Err() != nil {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
