package types

import (
	"bennypowers.dev/slimls/internal/analysis"
	"bennypowers.dev/slimls/internal/documents"
	"bennypowers.dev/slimls/internal/uriutil"
)

// LanguageID is the language identifier editors use for Slim
const LanguageID = "slim"

// IsTemplateDocument reports whether an open document should be analysed.
// Files with a template extension must also be selected by the config;
// anything else qualifies only when the editor says it is Slim.
func IsTemplateDocument(s ServerContext, doc *documents.Document) bool {
	if doc == nil {
		return false
	}
	path := uriutil.URIToPath(doc.URI())
	if analysis.IsTemplatePath(path) {
		return s.IsTemplateFile(path)
	}
	return doc.LanguageID() == LanguageID
}
