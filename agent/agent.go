// Package agent runs the interactive chat session with the Artha-X assistant.
package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/etnz/arthax"
)

// Agent reads user messages and submits them to the conversation, one turn at
// a time.
type Agent struct {
	w   io.Writer
	r   *bufio.Reader
	app *arthax.App
}

// New creates an Agent reading from r and writing prompts to w. Replies are
// drawn by the app's log view.
func New(w io.Writer, r io.Reader, app *arthax.App) *Agent {
	return &Agent{
		w:   w,
		r:   bufio.NewReader(r),
		app: app,
	}
}

const prompt = "artha> "

// Run starts the REPL. prompts are submitted first, as if typed. It returns
// on "bye" or at the end of the input.
func (a *Agent) Run(ctx context.Context, prompts ...string) error {
	fmt.Fprintln(a.w, "Welcome to Artha-X chat. Type 'bye' to exit.")

	for {
		fmt.Fprint(a.w, prompt)
		var input string

		// Flush prompts from the list and then ask for the user.
		if len(prompts) > 0 {
			input, prompts = prompts[0], prompts[1:]
			input = strings.TrimSpace(input)
			if input == "" {
				continue
			}
			fmt.Fprintln(a.w, input)
		} else {
			var err error
			input, err = a.r.ReadString('\n')
			if err != nil && (err != io.EOF || strings.TrimSpace(input) == "") {
				if err == io.EOF {
					fmt.Fprintln(a.w)
					return nil // Clean exit on Ctrl+D
				}
				return err
			}
		}

		if strings.TrimSpace(input) == "bye" {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		a.app.Say(ctx, input)
		// One turn at a time: the next prompt waits for the reply.
		a.app.Wait()
	}
}
