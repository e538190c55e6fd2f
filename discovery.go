package subscriber

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tomnomnom/linkheader"

	"meow.tf/websub/subscriber/model"
)

// Discover issues a GET to the resource URL and extracts the topic's self
// URL and advertised hubs from its Link headers.
//
// A 406 response fails with ErrContentNegotiation. A response without any
// Link header fails with ErrNoLinkHeader. Discovery succeeds only when the
// links carry at least one rel="hub" and exactly one rel="self"; a second
// self link fails with ErrDuplicateSelf, anything else missing fails with
// ErrIncompleteDiscovery.
//
// With WithContentDiscovery enabled, a response whose Link headers are
// absent or incomplete falls back to parsing the body (HTML or feed XML).
func (c *Client) Discover(ctx context.Context, resourceURL string) (*model.DiscoveryResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resourceURL, nil)

	if err != nil {
		return nil, err
	}

	if len(c.accept) > 0 {
		req.Header.Set("Accept", strings.Join(c.accept, ", "))
	}

	if len(c.acceptLanguage) > 0 {
		req.Header.Set("Accept-Language", strings.Join(c.acceptLanguage, ", "))
	}

	res, err := c.client.Do(req)

	if err != nil {
		return nil, err
	}

	defer res.Body.Close()

	if res.StatusCode == http.StatusNotAcceptable {
		return nil, fmt.Errorf("%w: %s responded with 406", ErrContentNegotiation, resourceURL)
	}

	linkHeaders := res.Header[http.CanonicalHeaderKey("Link")]

	if len(linkHeaders) == 0 {
		if c.contentDiscovery {
			return discoverFromBody(res)
		}

		return nil, ErrNoLinkHeader
	}

	result, err := extractLinkHeaders(linkHeaders)

	if err != nil && c.contentDiscovery && !errors.Is(err, ErrDuplicateSelf) {
		return discoverFromBody(res)
	}

	return result, err
}

// extractLinkHeaders walks every link in order of appearance. A rel
// containing "hub" appends to the hub list, a rel containing "self" sets the
// topic URL.
func extractLinkHeaders(headers []string) (*model.DiscoveryResult, error) {
	result := &model.DiscoveryResult{}

	for _, link := range linkheader.ParseMultiple(headers) {
		u := strings.TrimSpace(link.URL)

		if strings.Contains(link.Rel, "hub") {
			result.Hubs = append(result.Hubs, u)
		}

		if strings.Contains(link.Rel, "self") {
			if result.Topic != "" {
				return nil, fmt.Errorf("%w: %q and %q", ErrDuplicateSelf, result.Topic, u)
			}

			result.Topic = u
		}
	}

	if len(result.Hubs) == 0 {
		return nil, fmt.Errorf("%w: no hub link", ErrIncompleteDiscovery)
	}

	if result.Topic == "" {
		return nil, fmt.Errorf("%w: no self link", ErrIncompleteDiscovery)
	}

	return result, nil
}

// discoverFromBody extracts hub and self links from the response body based
// on its content type.
func discoverFromBody(res *http.Response) (*model.DiscoveryResult, error) {
	contentType := res.Header.Get("Content-Type")

	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[0:idx]
	}

	switch contentType {
	case "text/xml", "application/xml", "application/rss+xml", "application/atom+xml":
		return extractFeedLinks(res.Body)
	case "text/html":
		return extractHTMLLinks(res.Body)
	}

	return nil, ErrNoLinkHeader
}

// extractHTMLLinks scans an HTML document's <link> elements for rel="self"
// and rel="hub".
func extractHTMLLinks(r io.Reader) (*model.DiscoveryResult, error) {
	doc, err := goquery.NewDocumentFromReader(r)

	if err != nil {
		return nil, err
	}

	links := doc.Find("link")

	hub := links.FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.AttrOr("rel", "") == "hub"
	})

	if hub.Length() < 1 {
		return nil, fmt.Errorf("%w: no hub link", ErrIncompleteDiscovery)
	}

	self := links.FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.AttrOr("rel", "") == "self"
	})

	if self.Length() < 1 {
		return nil, fmt.Errorf("%w: no self link", ErrIncompleteDiscovery)
	}

	result := &model.DiscoveryResult{Topic: self.AttrOr("href", "")}

	hub.Each(func(_ int, s *goquery.Selection) {
		result.Hubs = append(result.Hubs, s.AttrOr("href", ""))
	})

	return result, nil
}
