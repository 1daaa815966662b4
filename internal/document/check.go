package document

import (
	"bytes"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
	"github.com/vektah/gqlparser/v2/parser"
)

// Check parses the document text as an executable GraphQL document.
// It is a syntax check only; no schema is involved.
func Check(text string) (*ast.QueryDocument, error) {
	doc, gErr := parser.ParseQuery(&ast.Source{
		Name:  "compiled",
		Input: text,
	})
	if gErr != nil {
		return nil, gErr
	}
	return doc, nil
}

// Format pretty-prints a parsed document.
func Format(doc *ast.QueryDocument) string {
	var buf bytes.Buffer
	formatter.NewFormatter(&buf).FormatQueryDocument(doc)
	return buf.String()
}
