package subscriber

import (
	"errors"
	"fmt"
	"io"

	xpp "github.com/mmcdole/goxpp"
	"golang.org/x/net/html/charset"

	"meow.tf/websub/subscriber/model"
)

// extractFeedLinks scans an RSS, Atom or RDF document for <link rel="self">
// and <link rel="hub"> elements.
func extractFeedLinks(r io.Reader) (*model.DiscoveryResult, error) {
	p := xpp.NewXMLPullParser(r, false, charset.NewReaderLabel)

	result := &model.DiscoveryResult{}

	feedTag := firstTag(p)

	switch feedTag {
	case "rss", "rdf":
		skipUntil(p, "channel")

		if err := p.Expect(xpp.StartTag, "channel"); err != nil {
			return nil, err
		}
	case "feed":
	default:
		return nil, errors.New("unexpected feed type")
	}

	for {
		event, err := p.NextTag()

		if err != nil {
			return nil, err
		}

		if event == xpp.StartTag {
			if p.Name == "link" {
				switch p.Attribute("rel") {
				case "self":
					result.Topic = p.Attribute("href")
				case "hub":
					result.Hubs = append(result.Hubs, p.Attribute("href"))
				}
			} else {
				p.Skip()
			}
		} else if event == xpp.EndTag {
			if p.Name == "channel" {
				break
			}
		} else if event == xpp.EndDocument {
			break
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

// skipUntil skips tags from the parser until we have the expected tag
func skipUntil(p *xpp.XMLPullParser, tagName string) {
	for {
		event, err := p.NextTag()

		if err != nil || event == xpp.EndDocument {
			break
		}

		if event == xpp.StartTag {
			if p.Name == tagName {
				return
			}

			p.Skip()
		}
	}
}

// firstTag gets the first start tag
func firstTag(p *xpp.XMLPullParser) string {
	for {
		event, err := p.NextTag()

		if err != nil || event == xpp.EndDocument {
			break
		}

		if event == xpp.StartTag {
			return p.Name
		}
	}

	return ""
}
