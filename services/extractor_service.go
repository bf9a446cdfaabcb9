package services

import (
	"context"
	"fmt"
	"html"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
)

func init() {

	// Load .env file from the current directory
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}
	err := license.SetMeteredKey(os.Getenv("UNIDOC_LICENSE_KEY"))
	if err != nil {
		fmt.Printf("ERROR: Failed to set Unidoc license key: %v. PDF processing will fail.\n", err)
	}
}

// ExtractTextFromFile reads a file and returns its text content.
// It automatically handles different file types.
func ExtractTextFromFile(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".txt", ".md":
		content, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(content), nil
	case ".pdf":
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		return ExtractPDF(f)
	default:
		return "", fmt.Errorf("unsupported file type: %s", ext)
	}
}

// ExtractPDF uses UniPDF to get all text from a PDF. The reader form
// also serves multipart uploads, which never touch the filesystem.
func ExtractPDF(r io.ReadSeeker) (string, error) {
	pdfReader, err := model.NewPdfReader(r)
	if err != nil {
		return "", err
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			return "", err
		}

		ex, err := extractor.New(page)
		if err != nil {
			return "", err
		}

		text, err := ex.ExtractText()
		if err != nil {
			return "", err
		}
		sb.WriteString(text)
		sb.WriteString("\n\n") // Add space between pages
	}

	if strings.TrimSpace(sb.String()) == "" {
		return "", fmt.Errorf("no text could be extracted from pdf")
	}
	return sb.String(), nil
}

// Pre-compiled regular expressions for HTML scraping.
var (
	titleTag     = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	scriptTag    = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag     = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptTag  = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	headTag      = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	svgTag       = regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`)
	navTag       = regexp.MustCompile(`(?is)<nav[^>]*>.*?</nav>`)
	footerTag    = regexp.MustCompile(`(?is)<footer[^>]*>.*?</footer>`)
	headerTag    = regexp.MustCompile(`(?is)<header[^>]*>.*?</header>`)
	asideTag     = regexp.MustCompile(`(?is)<aside[^>]*>.*?</aside>`)
	htmlComments = regexp.MustCompile(`(?s)<!--.*?-->`)
	allTags      = regexp.MustCompile(`<[^>]+>`)
)

// WebsiteExtractor downloads a page and reduces it to plain text
// suitable for ingestion.
type WebsiteExtractor struct {
	httpClient *http.Client
	userAgent  string
}

// Extract fetches the URL and returns the page text and title. A URL
// without a scheme defaults to https. Navigation chrome (nav, header,
// footer, aside) and non-content elements are stripped before the
// remaining text is flattened to single-space-separated plain text.
func (w *WebsiteExtractor) Extract(ctx context.Context, rawURL string) (string, string, error) {
	url := normalizeURL(rawURL)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to create request for %s: %w", url, err)
	}
	httpReq.Header.Set("User-Agent", w.userAgent)

	resp, err := w.httpClient.Do(httpReq)
	if err != nil {
		return "", "", fmt.Errorf("failed to fetch website %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", "", fmt.Errorf("website %s returned status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("failed to read website body: %w", err)
	}

	content := string(body)
	title := extractTitle(content)
	text := stripHTML(content)
	if text == "" {
		return "", "", fmt.Errorf("no content could be extracted from website %s", url)
	}

	log.Printf("EXTRACT: Scraped %d characters from %s", len(text), url)
	return text, title, nil
}

func normalizeURL(rawURL string) string {
	if strings.HasPrefix(rawURL, "http://") || strings.HasPrefix(rawURL, "https://") {
		return rawURL
	}
	return "https://" + rawURL
}

// extractTitle pulls the page title, defaulting when the page has none.
func extractTitle(content string) string {
	matches := titleTag.FindStringSubmatch(content)
	if len(matches) > 1 {
		title := strings.TrimSpace(html.UnescapeString(matches[1]))
		if title != "" {
			return title
		}
	}
	return "Website Content"
}

// stripHTML removes non-content elements and tags, decodes entities,
// and collapses all whitespace to single spaces.
func stripHTML(content string) string {
	for _, re := range []*regexp.Regexp{
		scriptTag, styleTag, noscriptTag, headTag, svgTag,
		navTag, footerTag, headerTag, asideTag, htmlComments,
	} {
		content = re.ReplaceAllString(content, "")
	}

	// Tags become spaces so text from adjacent elements stays separated.
	content = allTags.ReplaceAllString(content, " ")
	content = html.UnescapeString(content)

	return strings.Join(strings.Fields(content), " ")
}

// NewWebsiteExtractor creates a website extractor. The client controls
// the fetch timeout.
func NewWebsiteExtractor(httpClient *http.Client, userAgent string) *WebsiteExtractor {
	return &WebsiteExtractor{
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}
