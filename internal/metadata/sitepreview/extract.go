package sitepreview

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// extractPreview parses an HTML document and pulls out the fields a tool
// listing can use. OpenGraph tags win over plain HTML equivalents.
func extractPreview(base *url.URL, body []byte) (*Preview, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var (
		title       string
		ogTitle     string
		description string
		ogDesc      string
		siteName    string
		imageURL    string
		iconURL     string
	)

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					title = n.FirstChild.Data
				}
			case "meta":
				key := attr(n, "property")
				if key == "" {
					key = attr(n, "name")
				}
				content := attr(n, "content")
				if content == "" {
					break
				}
				switch key {
				case "og:title":
					ogTitle = content
				case "og:description":
					ogDesc = content
				case "og:site_name":
					siteName = content
				case "og:image", "og:image:url":
					if imageURL == "" {
						imageURL = content
					}
				case "description":
					description = content
				}
			case "link":
				rel := strings.ToLower(attr(n, "rel"))
				if iconURL == "" && (rel == "icon" || rel == "shortcut icon" || rel == "apple-touch-icon") {
					iconURL = attr(n, "href")
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if ogTitle != "" {
		title = ogTitle
	}
	if ogDesc != "" {
		description = ogDesc
	}

	return &Preview{
		URL:         base.String(),
		Title:       strings.TrimSpace(collapseWhitespace(title)),
		Description: htmlToMarkdown(strings.TrimSpace(collapseWhitespace(description))),
		SiteName:    strings.TrimSpace(siteName),
		ImageURL:    resolveURL(base, imageURL),
		IconURL:     resolveURL(base, iconURL),
	}, nil
}

// attr returns the value of the named attribute, or "".
func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// resolveURL resolves a possibly relative reference against the page URL.
// Returns "" for empty or unparseable references.
func resolveURL(base *url.URL, ref string) string {
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}

// collapseWhitespace replaces multiple whitespace with single space.
var whitespaceRegex = regexp.MustCompile(`\s+`)

func collapseWhitespace(s string) string {
	return whitespaceRegex.ReplaceAllString(s, " ")
}
