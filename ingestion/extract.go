package ingestion

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/ledongthuc/pdf"
)

const maxFetchBytes = 10 << 20

// FetchText downloads sourceURL and returns its visible text. HTML pages go
// through readability extraction with a whole-body fallback; PDF responses
// are extracted page by page.
func FetchText(ctx context.Context, client *http.Client, sourceURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("create fetch request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", sourceURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("fetch %s: status %s", sourceURL, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}

	if isPDF(resp.Header.Get("Content-Type"), data) {
		return extractPDF(data)
	}
	return extractHTML(data, sourceURL), nil
}

func isPDF(contentType string, data []byte) bool {
	if strings.Contains(contentType, "application/pdf") {
		return true
	}
	return bytes.HasPrefix(data, []byte("%PDF-"))
}

// extractHTML prefers the readability article text and falls back to the
// full body text when readability finds nothing, mirroring how browsers'
// reader modes degrade on sparse pages.
func extractHTML(data []byte, sourceURL string) string {
	pageURL, err := url.Parse(sourceURL)
	if err != nil {
		pageURL = nil
	}

	if article, err := readability.FromReader(bytes.NewReader(data), pageURL); err == nil {
		if text := normalizeWhitespace(article.TextContent); text != "" {
			return text
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript").Remove()
	return normalizeWhitespace(doc.Find("body").Text())
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	text, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	return normalizeWhitespace(string(text)), nil
}
