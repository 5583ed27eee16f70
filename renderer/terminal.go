package renderer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/etnz/arthax"
	"github.com/google/uuid"
	"github.com/viant/afs"
)

var (
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	loadingStyle = lipgloss.NewStyle().Faint(true)
)

// Terminal draws regions, toasts and the chat log on a terminal. Markdown goes
// through Format (glamour in the CLI) before being written.
type Terminal struct {
	mu       sync.Mutex
	out      io.Writer
	toasts   io.Writer
	imageDir string
	fs       afs.Service

	// Format turns markdown into terminal output. Markdown is written as is
	// when nil.
	Format func(markdown string) (string, error)
}

// NewTerminal returns a terminal writing views to out and toasts to toasts.
// Images are saved under imageDir (any afs URL).
func NewTerminal(out, toasts io.Writer, imageDir string) *Terminal {
	return &Terminal{
		out:      out,
		toasts:   toasts,
		imageDir: strings.TrimRight(imageDir, "/"),
		fs:       afs.New(),
	}
}

func (t *Terminal) print(markdown string) {
	s := markdown
	if t.Format != nil {
		formatted, err := t.Format(markdown)
		if err != nil {
			log.Printf("cannot format markdown (printed raw): %v", err)
		} else {
			s = formatted
		}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprint(t.out, s)
	if !strings.HasSuffix(s, "\n") {
		fmt.Fprintln(t.out)
	}
}

// Region implements arthax.Surface.
func (t *Terminal) Region(name string) arthax.Region {
	title := name
	if f, ok := arthax.FeatureByName(name); ok {
		title = f.Title
	}
	return &region{t: t, name: name, title: title}
}

type region struct {
	t     *Terminal
	name  string
	title string
}

// Render prints v. A terminal cannot erase, so the placeholder stays in the
// scrollback and the result is printed below it.
func (r *region) Render(v arthax.View) {
	if v.IsLoading() {
		r.t.mu.Lock()
		fmt.Fprintln(r.t.out, loadingStyle.Render("… "+v.Loading))
		r.t.mu.Unlock()
		return
	}
	ref := ""
	if len(v.Image) > 0 {
		var err error
		ref, err = r.t.saveImage(r.name, v.Image)
		if err != nil {
			log.Printf("cannot save image: %v", err)
		}
	}
	r.t.print(ViewMarkdown(r.title, v, ref))
}

// saveImage writes a PNG under imageDir and returns its location.
func (t *Terminal) saveImage(name string, png []byte) (string, error) {
	if t.imageDir == "" {
		return "", fmt.Errorf("no image directory")
	}
	url := fmt.Sprintf("%s/%s-%s.png", t.imageDir, name, uuid.NewString()[:8])
	if err := t.fs.Upload(context.Background(), url, 0644, bytes.NewReader(png)); err != nil {
		return "", err
	}
	return url, nil
}

// Show implements arthax.ToastSink.
func (t *Terminal) Show(n arthax.Notification) {
	var line string
	switch n.Kind {
	case arthax.KindSuccess:
		line = successStyle.Render("✔ " + n.Text)
	default:
		line = errorStyle.Render("✖ " + n.Text)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.toasts, line)
}

// Fade implements arthax.ToastSink.
func (t *Terminal) Fade(n arthax.Notification) {}

// Remove implements arthax.ToastSink.
func (t *Terminal) Remove(n arthax.Notification) {
	log.Printf("notification %s expired after %v", n.ID, arthax.NotificationDisplay+arthax.NotificationFade)
}

// Append implements arthax.LogView.
func (t *Terminal) Append(m arthax.Message) {
	t.print(MessageMarkdown(m))
}

// ScrollToEnd implements arthax.LogView. A terminal always shows its end.
func (t *Terminal) ScrollToEnd() {}
