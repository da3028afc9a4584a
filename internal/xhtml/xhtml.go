// Package xhtml is a minimal XHTML-IM codec (XEP-0071). Rendered markup
// travels verbatim; the only transformation offered is deriving the
// plain-text fallback body from the markup.
package xhtml

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// ToPlain strips markup from an XHTML fragment, returning the character
// data for use as a plain-text fallback body. Markup that does not parse
// is returned unchanged.
func ToPlain(markup string) string {
	dec := xml.NewDecoder(strings.NewReader("<body>" + markup + "</body>"))
	var b strings.Builder
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return markup
		}
		if cd, ok := tok.(xml.CharData); ok {
			b.WriteString(string(cd))
		}
	}
	return b.String()
}
