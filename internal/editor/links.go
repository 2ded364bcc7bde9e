package editor

import (
	"net/url"
	"strings"

	"github.com/sidereusnuntius/donata/internal/domain"
)

var profileURLs = map[string]string{
	domain.Twitter:  "https://x.com/",
	domain.GitHub:   "https://github.com/",
	domain.Warpcast: "https://warpcast.com/",
	domain.Telegram: "https://t.me/",
	domain.Lens:     "https://hey.xyz/u/",
}

// Link is an outbound link built from a social handle.
type Link struct {
	Network string
	Handle  string
	URL     string
}

// Links returns one link per non-empty handle of the record, in display order.
func (e *Editor) Links() []Link {
	return LinksOf(e.Record().Socials)
}

func LinksOf(socials domain.Socials) []Link {
	var links []Link
	for _, network := range domain.SocialNetworks {
		handle := strings.TrimSpace(socials[network])
		if handle == "" {
			continue
		}
		links = append(links, Link{
			Network: network,
			Handle:  handle,
			URL:     HandleURL(network, handle),
		})
	}
	return links
}

// HandleURL builds the profile url of handle on network. Handles that already are http(s)
// urls are kept as they are.
func HandleURL(network, handle string) string {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if u, err := url.Parse(handle); err == nil && (u.Scheme == "https" || u.Scheme == "http") && u.Host != "" {
		return u.String()
	}
	return profileURLs[network] + url.PathEscape(handle)
}
