package arthax

// Pair is one entry of a key/value list, in backend order.
type Pair struct {
	Key   string
	Value string
}

// View is the full content of a display region. Rendering a View replaces
// whatever the region showed before.
type View struct {
	Loading string // placeholder shown while an exchange is in flight
	Error   string
	Hint    string // extra line under an error, e.g. a login link
	Text    string
	JSON    string // pretty-printed JSON, shown verbatim
	Image   []byte // PNG
	Pairs   []Pair
	Ordered bool // Pairs are ordered steps rather than a key/value list
}

// IsLoading reports whether v is a placeholder.
func (v View) IsLoading() bool { return v.Loading != "" }

// Region is the display area owned by one feature.
type Region interface {
	Render(v View)
}

// Surface gives access to the regions of every feature, by trigger name.
type Surface interface {
	Region(name string) Region
}

// LogView draws the conversation log.
type LogView interface {
	Append(m Message)
	ScrollToEnd()
}

// Composer is the chat input field.
type Composer interface {
	Clear()
}

// IdentityPrompter asks the user for an identity candidate.
type IdentityPrompter interface {
	PromptIdentity() (string, error)
}
