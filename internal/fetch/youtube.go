package fetch

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	youTubeVideoPattern = regexp.MustCompile(`(?i)youtube\.com/watch\?(?:.*&)?v=|youtu\.be/`)
	unavailablePattern  = regexp.MustCompile(`(?i)video unavailable|this video is private|account associated with this video has been terminated|this video isn'?t available|"playabilityStatus":\{"status":"(?:ERROR|UNPLAYABLE|LOGIN_REQUIRED)"`)
	playerMarkers       = []string{"ytplayer", "/s/player/", `"player_response"`, "ytInitialPlayerResponse"}
)

// IsYouTubeVideo reports whether the URL points at a single video
func IsYouTubeVideo(urlStr string) bool {
	return youTubeVideoPattern.MatchString(urlStr)
}

// IsYouTube reports whether the URL is on a YouTube host
func IsYouTube(urlStr string) bool {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")
	return host == "youtube.com" || host == "youtu.be"
}

// YouTubePage is what a watch page tells us about its video.
type YouTubePage struct {
	Title       string
	HasPlayer   bool
	Unavailable bool
}

// Available means a player is present and no unavailability notice was found
func (p YouTubePage) Available() bool {
	return p.HasPlayer && !p.Unavailable
}

// InspectYouTube parses a watch page. HEAD on a removed video still returns
// 200, so availability has to be read from the markup.
func InspectYouTube(html string) (YouTubePage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return YouTubePage{}, &Error{Message: "failed to parse YouTube page", Cause: err}
	}

	var page YouTubePage
	page.Title = strings.TrimSpace(doc.Find(`meta[property="og:title"]`).AttrOr("content", ""))
	if page.Title == "" {
		page.Title = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(doc.Find("title").First().Text()), "- YouTube"))
	}

	page.HasPlayer = doc.Find(`meta[property^="og:video"]`).Length() > 0
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if src, ok := s.Attr("src"); ok {
			text += src
		}
		for _, marker := range playerMarkers {
			if strings.Contains(text, marker) {
				page.HasPlayer = true
				return false
			}
		}
		return true
	})

	page.Unavailable = unavailablePattern.MatchString(html)
	return page, nil
}

// CheckYouTubeVideo downloads a watch page and inspects it.
func CheckYouTubeVideo(ctx context.Context, urlStr string, opts *Options) (*Result, YouTubePage, error) {
	res, err := Page(ctx, urlStr, opts)
	if err != nil {
		return nil, YouTubePage{}, err
	}
	page, err := InspectYouTube(res.Body)
	if err != nil {
		return res, YouTubePage{}, err
	}
	if !res.Reachable() {
		page.Unavailable = true
	}
	return res, page, nil
}
