package affiliate

import (
	"net/url"
	"strings"

	"github.com/foomo/vacuumpartshub/service/vo"
)

const (
	// AmazonSearchURL is the marketplace search endpoint parts link to.
	AmazonSearchURL = "https://www.amazon.com/s"
	DefaultTag      = "vacuumhub-20"
)

// Linker builds outbound marketplace search links tagged with an affiliate id.
type Linker struct {
	SearchURL string
	Tag       string
}

func NewLinker(tag string) Linker {
	if tag == "" {
		tag = DefaultTag
	}
	return Linker{
		SearchURL: AmazonSearchURL,
		Tag:       tag,
	}
}

// Link returns <search url>?k=<query>&tag=<tag>. Spaces are encoded as %20.
func (l Linker) Link(query string) string {
	return l.SearchURL + "?k=" + escape(query) + "&tag=" + escape(l.Tag)
}

// PartLinks pairs every part with its search link, keeping the order of parts.
func (l Linker) PartLinks(parts []vo.Part) []vo.PartLink {
	links := make([]vo.PartLink, len(parts))
	for i, part := range parts {
		links[i] = vo.PartLink{
			Part: part,
			URL:  l.Link(part.SearchQuery),
		}
	}
	return links
}

// escape matches encodeURIComponent for spaces; QueryEscape has already turned
// literal plus signs into %2B, so every remaining "+" is a space.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
