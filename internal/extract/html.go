package extract

import (
	"bytes"
	"fmt"
	"net/url"

	readability "github.com/go-shiori/go-readability"
)

// localURL gives readability a base URL for resolving relative links; the
// content comes from an upload, so any placeholder works.
var localURL = &url.URL{Scheme: "file", Path: "/upload.html"}

// extractHTML pulls readable text content out of an HTML document, dropping
// navigation and boilerplate.
func extractHTML(content []byte) (string, error) {
	article, err := readability.FromReader(bytes.NewReader(content), localURL)
	if err != nil {
		return "", fmt.Errorf("%w: html: %v", ErrCorruptDocument, err)
	}
	return article.TextContent, nil
}
