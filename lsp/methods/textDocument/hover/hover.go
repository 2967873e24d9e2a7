package hover

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"bennypowers.dev/slimls/internal/analysis"
	"bennypowers.dev/slimls/internal/collections"
	"bennypowers.dev/slimls/internal/convert"
	"bennypowers.dev/slimls/internal/log"
	"bennypowers.dev/slimls/internal/position"
	"bennypowers.dev/slimls/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// lineHover is the data rendered for one template line
type lineHover struct {
	Snippets   []convert.Snippet
	Constants  []string
	Issues     []analysis.Issue
	OutputLine int
}

var lineHoverTemplate = template.Must(template.New("lineHover").Parse(
	"```ruby\n{{range .Snippets}}{{.Code}}\n{{end}}```\n" +
		"*Generated Ruby, line {{.OutputLine}}*\n" +
		"{{if .Constants}}\n**Constants**:{{range $i, $c := .Constants}}{{if $i}},{{end}} `{{$c}}`{{end}}\n{{end}}" +
		"{{range .Issues}}\n⚠️ {{.Message}} (generated line {{.Line}})\n{{end}}"))

// linePlainTemplate is for clients that cannot render markdown
var linePlainTemplate = template.Must(template.New("linePlain").Parse(
	"{{range .Snippets}}{{.Code}}\n{{end}}" +
		"Generated Ruby, line {{.OutputLine}}\n" +
		"{{if .Constants}}Constants:{{range $i, $c := .Constants}}{{if $i}},{{end}} {{$c}}{{end}}\n{{end}}" +
		"{{range .Issues}}Warning: {{.Message}} (generated line {{.Line}})\n{{end}}"))

// renderLineHover renders the hover content for a template line
func renderLineHover(data lineHover, markdown bool) (string, error) {
	tmpl := linePlainTemplate
	if markdown {
		tmpl = lineHoverTemplate
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Hover handles the textDocument/hover request. Hovering a template line
// shows the Ruby generated from it, the constants it references and any
// Ruby issues attributed to it.
func Hover(req *types.RequestContext, params *protocol.HoverParams) (*protocol.Hover, error) {
	uri := params.TextDocument.URI
	pos := params.Position

	log.Debug("Hover requested: %s at line %d, char %d", uri, pos.Line, pos.Character)

	doc, report, err := req.Template(uri)
	if err != nil {
		return nil, err
	}
	if report == nil || !report.HasRuby() {
		return nil, nil
	}

	templateLine := int(pos.Line) + 1
	snippets := report.Conversion.SnippetsAt(templateLine)
	if len(snippets) == 0 {
		return nil, nil
	}

	data := lineHover{
		Snippets:   snippets,
		OutputLine: snippets[0].OutputLine,
	}
	seen := collections.NewSet[string]()
	for _, ref := range report.ReferencesAt(templateLine) {
		if !seen.Has(ref.Name) {
			seen.Add(ref.Name)
			data.Constants = append(data.Constants, ref.Name)
		}
	}
	for _, issue := range report.Issues {
		if issue.TemplateLine == templateLine {
			data.Issues = append(data.Issues, issue)
		}
	}

	kind := req.HoverFormat()
	content, err := renderLineHover(data, kind == protocol.MarkupKindMarkdown)
	if err != nil {
		return nil, fmt.Errorf("failed to render hover: %w", err)
	}

	text := doc.Line(int(pos.Line))
	start := len(text) - len(strings.TrimLeft(text, " \t"))
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  kind,
			Value: content,
		},
		Range: &protocol.Range{
			Start: protocol.Position{Line: pos.Line, Character: protocol.UInteger(position.ByteOffsetToUTF16(text, start))},
			End:   protocol.Position{Line: pos.Line, Character: protocol.UInteger(position.StringLengthUTF16(text))},
		},
	}, nil
}
