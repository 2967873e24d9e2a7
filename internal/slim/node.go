package slim

// Node is one element of a parsed Slim template.
// The set of implementations is closed; consumers switch on the concrete type.
type Node interface {
	slimNode()
}

// Multi is an ordered sequence of nodes. Sequences produced by Parse hold
// exactly one entry per physical source line, so a child's index is its
// line offset from the start of the sequence.
type Multi struct {
	Children []Node
}

// HTML is a markup element. Tag and Attrs describe the element; only
// Children carry content relevant to code extraction.
type HTML struct {
	Tag      string
	Attrs    []Attr
	Children []Node
}

// Attr is a single element attribute as written in the template
type Attr struct {
	Name  string
	Value string
	// Quoted reports whether Value was a quoted string literal rather than Ruby code
	Quoted bool
}

// CodeOutput is an `=` or `==` line: Ruby code whose value is rendered.
// Children holds the nested lines, which form the code's block when present.
type CodeOutput struct {
	Code     string
	Escape   bool
	Children []Node
}

// CodeControl is a `-` line: Ruby code evaluated for effect.
// Body is nil when the construct carries no body at all.
type CodeControl struct {
	Code string
	Body Node
}

// Text is a run of literal text, possibly containing interpolation markers
type Text struct {
	Body Node
}

// Interpolate is raw text that may contain #{...} markers
type Interpolate struct {
	Raw string
}

// Embedded is a `name:` block carrying text in another language
type Embedded struct {
	Kind string
	Body Node
}

// Static is literal text with nothing to extract
type Static struct {
	Text string
}

// Newline marks a source line that carries nothing else
type Newline struct{}

func (*Multi) slimNode()       {}
func (*HTML) slimNode()        {}
func (*CodeOutput) slimNode()  {}
func (*CodeControl) slimNode() {}
func (*Text) slimNode()        {}
func (*Interpolate) slimNode() {}
func (*Embedded) slimNode()    {}
func (*Static) slimNode()      {}
func (*Newline) slimNode()     {}

// IsNewline reports whether n is a bare line marker
func IsNewline(n Node) bool {
	_, ok := n.(*Newline)
	return ok
}
