// Package renderer turns arthax views into markdown and draws them, together
// with notifications and the chat log, on a terminal.
package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/arthax"
	md "github.com/nao1215/markdown"
)

// ViewMarkdown renders the content of a region. imageRef is the location of
// v.Image once saved, it is ignored if v has no image.
func ViewMarkdown(title string, v arthax.View, imageRef string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H2(title)

	if v.IsLoading() {
		doc.PlainText(md.Italic(v.Loading))
		return doc.String()
	}

	if v.Error != "" {
		doc.PlainText(md.Bold("Error:") + " " + v.Error)
		if v.Hint != "" {
			doc.PlainText(v.Hint)
		}
		return doc.String()
	}

	if len(v.Image) > 0 && imageRef != "" {
		doc.PlainText(fmt.Sprintf("![%s](%s)", title, imageRef))
	}

	if v.Text != "" {
		doc.PlainText(v.Text)
	}

	if len(v.Pairs) > 0 {
		if v.Ordered {
			var steps []string
			for _, p := range v.Pairs {
				steps = append(steps, md.Bold(p.Key)+": "+p.Value)
			}
			doc.OrderedList(steps...)
		} else {
			table := md.TableSet{
				Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft},
				Header:    []string{"Insight", "Value"},
			}
			for _, p := range v.Pairs {
				table.Rows = append(table.Rows, []string{p.Key, p.Value})
			}
			doc.Table(table)
		}
	}

	if v.JSON != "" {
		doc.CodeBlocks(md.SyntaxHighlightJSON, v.JSON)
	}

	return doc.String()
}

// MessageMarkdown renders one turn of the conversation.
func MessageMarkdown(m arthax.Message) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	switch m.Role {
	case arthax.RoleUser:
		doc.PlainText(md.Bold("you") + ": " + m.Text)
	default:
		doc.PlainText(md.Bold("artha") + ": " + m.Text)
	}
	return doc.String()
}
