package document

import (
	"strings"
	"text/template"

	"github.com/randalmurphal/metis/internal/errors"
	"github.com/randalmurphal/metis/templates"
)

// bodyContext is the data passed to a document body template.
type bodyContext struct {
	Title       string
	Description string
}

// RenderBody renders the initial markdown body for a new document of the
// given type from the embedded template assets.
func RenderBody(docType Type, title, description string) (string, error) {
	name := "documents/" + string(docType) + ".md"
	raw, err := templates.Documents.ReadFile(name)
	if err != nil {
		return "", errors.ErrInvalidContent("no body template for type " + string(docType)).WithCause(err)
	}

	tmpl, err := template.New(name).Parse(string(raw))
	if err != nil {
		return "", errors.ErrInvalidContent("body template for " + string(docType) + " is malformed").WithCause(err)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, bodyContext{Title: title, Description: description}); err != nil {
		return "", errors.ErrInvalidContent("cannot render body template").WithCause(err)
	}
	return b.String(), nil
}
