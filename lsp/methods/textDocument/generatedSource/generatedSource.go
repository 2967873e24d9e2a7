package generatedsource

import (
	"fmt"

	"bennypowers.dev/slimls/internal/convert"
	"bennypowers.dev/slimls/internal/log"
	"bennypowers.dev/slimls/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Method is the custom request editors send to preview generated Ruby
const Method = "slimls/generatedSource"

// Params identifies the template to convert
type Params struct {
	TextDocument protocol.TextDocumentIdentifier `json:"textDocument"`
}

// Result is the Ruby generated for an open template with its line mappings
type Result struct {
	URI      string            `json:"uri"`
	Version  int               `json:"version"`
	Code     string            `json:"code"`
	Mappings []convert.Mapping `json:"mappings"`
	Snippets []convert.Snippet `json:"snippets"`
	// SyntaxError is set instead of the other fields for malformed templates
	SyntaxError string `json:"syntaxError,omitempty"`
}

// GeneratedSource handles the slimls/generatedSource request
func GeneratedSource(req *types.RequestContext, params *Params) (*Result, error) {
	uri := params.TextDocument.URI
	log.Debug("Generated source requested for: %s", uri)

	doc := req.Server.Document(uri)
	if doc == nil {
		return nil, fmt.Errorf("document not open: %s", uri)
	}

	report, err := req.Server.Report(uri)
	if err != nil {
		return nil, err
	}

	result := &Result{
		URI:      uri,
		Version:  doc.Version(),
		Mappings: []convert.Mapping{},
		Snippets: []convert.Snippet{},
	}
	if report.SyntaxError != nil {
		result.SyntaxError = report.SyntaxError.Error()
		return result, nil
	}

	result.Code = report.Conversion.Code
	result.Mappings = append(result.Mappings, report.Conversion.Mapper.Mappings()...)
	result.Snippets = append(result.Snippets, report.Conversion.Snippets...)
	return result, nil
}
