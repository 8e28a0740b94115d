package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	neturl "net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	pkgerrors "github.com/pkg/errors"

	"urly/internal/models"
)

const (
	urOrigin  = "https://www.ur-net.go.jp"
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// DefaultNameHost is the only host listing pages are fetched from unless
	// other hosts are given to NewURScraper
	DefaultNameHost = "www.ur-net.go.jp"
)

// ErrNameHostNotAllowed is returned by GetName for listings on other hosts
var ErrNameHostNotAllowed = errors.New("listing host not allowed for name lookup")

// URScraper implements Scraper for UR (Urban Renaissance Agency) rentals
type URScraper struct {
	client    *http.Client
	endpoint  string
	nameHosts map[string]bool
}

// NewURScraper returns a scraper posting searches to endpoint. A zero timeout
// leaves the transport default. GetName only fetches pages served by
// nameHosts, DefaultNameHost when none are given.
func NewURScraper(endpoint string, timeout time.Duration, nameHosts ...string) *URScraper {
	if len(nameHosts) == 0 {
		nameHosts = []string{DefaultNameHost}
	}

	hosts := make(map[string]bool, len(nameHosts))
	for _, h := range nameHosts {
		hosts[strings.ToLower(strings.TrimSpace(h))] = true
	}

	return &URScraper{
		client:    &http.Client{Timeout: timeout},
		endpoint:  endpoint,
		nameHosts: hosts,
	}
}

// CanHandle reports whether url looks like a UR property page
func (u *URScraper) CanHandle(url string) bool {
	_, _, err := ExtractPropertyIDs(url)
	return err == nil
}

// ExtractIDs returns shisya and danchi of a UR property URL
func (u *URScraper) ExtractIDs(url string) (string, string, error) {
	return ExtractPropertyIDs(url)
}

// GetAvailability posts a search for one estate and decodes the vacancy count
func (u *URScraper) GetAvailability(ctx context.Context, shisya, danchi string) (*models.Availability, error) {
	payload := BuildPayload(shisya, danchi)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, strings.NewReader(payload))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("Origin", urOrigin)
	req.Header.Set("Referer", urOrigin+"/")
	req.Header.Set("Sec-Fetch-Dest", "empty")
	req.Header.Set("Sec-Fetch-Mode", "cors")
	req.Header.Set("Sec-Fetch-Site", "same-site")

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "could not reach the UR search API")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var availability models.Availability
	if err := json.NewDecoder(resp.Body).Decode(&availability); err != nil {
		return nil, &ParseError{Err: err}
	}
	if availability.Count == nil {
		return nil, &ParseError{Err: errors.New("missing count field")}
	}
	if *availability.Count < 0 {
		return nil, &ParseError{Err: errors.New("negative count")}
	}

	return &availability, nil
}

// GetName fetches the property page and extracts the estate name. Pages on
// hosts outside the allowed set are never requested.
func (u *URScraper) GetName(ctx context.Context, url string) (string, error) {
	if !u.nameHostAllowed(url) {
		return "", ErrNameHostNotAllowed
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cleanURL(url), nil)
	if err != nil {
		return "", err
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ja,en-US;q=0.8,en;q=0.7")

	resp, err := u.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Code: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	nameSelectors := []string{
		".article_headings_title",
		"h1",
	}

	var name string
	for _, selector := range nameSelectors {
		name = strings.TrimSpace(doc.Find(selector).First().Text())
		if name != "" {
			break
		}
	}

	if name == "" {
		if content, ok := doc.Find("meta[property='og:title']").Attr("content"); ok {
			name = content
		}
	}
	if name == "" {
		name = doc.Find("title").First().Text()
	}

	name = trimSiteSuffix(name)
	if name == "" {
		return "", errors.New("property name not found")
	}
	return name, nil
}

func (u *URScraper) nameHostAllowed(rawURL string) bool {
	parsed, err := neturl.Parse(rawURL)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return u.nameHosts[strings.ToLower(parsed.Hostname())]
}

// trimSiteSuffix drops the "｜UR賃貸住宅" style suffix of page titles
func trimSiteSuffix(title string) string {
	for _, sep := range []string{"｜", "|"} {
		if idx := strings.Index(title, sep); idx > 0 {
			title = title[:idx]
		}
	}
	return strings.TrimSpace(title)
}

func cleanURL(url string) string {
	parts := strings.Split(url, "#")
	return parts[0]
}
