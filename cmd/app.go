// Package cmd implements the CLI application talking to the Artha-X service.
package cmd

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/arthax"
	"github.com/etnz/arthax/config"
	"github.com/etnz/arthax/renderer"
	"github.com/google/subcommands"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configFile   = flag.String("config", config.DefaultPath(), "Path to the YAML configuration file")
	apiURL       = flag.String("api", "", "Base URL of the Artha-X service. Overrides the configuration.")
	stateDir     = flag.String("state", "", "Folder holding the persisted identity and saved charts. Overrides the configuration.")
	currency     = flag.String("currency", "", "Currency code used to display amounts. Overrides the configuration.")
	discardStale = flag.Bool("discard-stale", false, "Ignore responses superseded by a newer request.")
	Verbose      = flag.Bool("v", false, "Print logs on stderr.")
)

// Commands lists every subcommand, in help order.
var Commands = func() []subcommands.Command {
	cmds := []subcommands.Command{
		&loginCmd{},
		&whoamiCmd{},
		&statusCmd{},
	}
	for _, f := range arthax.Features {
		cmds = append(cmds, &featureCmd{feature: f})
	}
	return append(cmds,
		&chatCmd{},
		&topicCmd{},
	)
}()

// loadConfig applies the command line over the configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "api":
			cfg.APIURL = *apiURL
		case "state":
			cfg.StateDir = *stateDir
		case "currency":
			cfg.Currency = *currency
		case "discard-stale":
			cfg.DiscardStale = *discardStale
		case "v":
			cfg.Verbose = *Verbose
		}
	})
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
	}
	return cfg, cfg.Validate()
}

// session is a running app bound to the terminal.
type session struct {
	*arthax.App
	cfg    *config.Config
	cancel context.CancelFunc
}

// start loads the configuration and runs a new app until close.
func start(ctx context.Context) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log.Printf("using %s, state in %s", cfg.APIURL, cfg.StateDir)

	term := renderer.NewTerminal(os.Stdout, os.Stderr, filepath.Join(cfg.StateDir, "charts"))
	term.Format = formatMarkdown

	app := arthax.New(
		arthax.NewFileStorage(cfg.StateDir, cfg.APIURL),
		arthax.NewGateway(cfg.APIURL, arthax.WithTimeout(cfg.Timeout)),
		term, term, term, nil,
		arthax.Options{Currency: cfg.Currency, DiscardStale: cfg.DiscardStale},
	)

	ctx, cancel := context.WithCancel(ctx)
	go app.Run(ctx)
	return &session{App: app, cfg: cfg, cancel: cancel}, nil
}

func (s *session) close() {
	s.Wait()
	s.cancel()
}

// stdinPrompter asks for the phone number on the terminal.
type stdinPrompter struct {
	r *bufio.Reader
}

var stdin = &stdinPrompter{r: bufio.NewReader(os.Stdin)}

func (p *stdinPrompter) PromptIdentity() (string, error) {
	fmt.Fprint(os.Stderr, "Phone number: ")
	line, err := p.r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// formatMarkdown renders markdown for the terminal.
func formatMarkdown(md string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

// printMarkdown prints markdown on stdout, raw if it cannot be rendered.
func printMarkdown(md string) {
	out, err := formatMarkdown(md)
	if err != nil {
		log.Printf("cannot render markdown: %v", err)
		out = md
	}
	fmt.Print(out)
}
