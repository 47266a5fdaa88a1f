package validation

import (
	"net/url"
	"regexp"
	"strings"

	"circle/internal/models"
)

var videoHosts = map[string]struct{}{
	"youtube.com":     {},
	"www.youtube.com": {},
	"m.youtube.com":   {},
	"youtu.be":        {},
}

var livestreamHosts = map[string]struct{}{
	"youtube.com":     {},
	"www.youtube.com": {},
	"m.youtube.com":   {},
	"youtu.be":        {},
	"twitch.tv":       {},
	"www.twitch.tv":   {},
	"m.twitch.tv":     {},
}

var youtubeIDRegex = regexp.MustCompile(`(?:youtube\.com/(?:[^/]+/.+/|(?:v|e(?:mbed)?|shorts|live)/|.*[?&]v=)|youtu\.be/)([^"&?/\s]{11})`)

// NormalizeContentURL checks rawURL against the host allow-list for
// submissionType and returns it in canonical form. A missing scheme is
// treated as https.
func NormalizeContentURL(submissionType, rawURL string) (string, error) {
	var allowed map[string]struct{}
	switch submissionType {
	case models.SubmissionTypeVideo:
		allowed = videoHosts
	case models.SubmissionTypeLivestream:
		allowed = livestreamHosts
	default:
		return "", models.NewInvalidContentError("submission_type must be video or livestream")
	}

	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return "", models.NewInvalidContentError("content_url is required")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", models.NewInvalidContentError("content_url must be a valid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", models.NewInvalidContentError("content_url must use http or https")
	}
	if u.User != nil || u.Port() != "" {
		return "", models.NewInvalidContentError("content_url must be a valid URL")
	}

	host := strings.ToLower(u.Hostname())
	if _, ok := allowed[host]; !ok {
		if submissionType == models.SubmissionTypeVideo {
			return "", models.NewInvalidContentError("Please enter a valid YouTube URL")
		}
		return "", models.NewInvalidContentError("Please enter a valid YouTube or Twitch URL")
	}
	if strings.Trim(u.Path, "/") == "" && u.RawQuery == "" {
		return "", models.NewInvalidContentError("content_url must point at a video or channel")
	}

	u.Host = host
	return u.String(), nil
}

// ExtractYouTubeID returns the 11-character video id embedded in a YouTube
// URL, or "" when there is none.
func ExtractYouTubeID(rawURL string) string {
	m := youtubeIDRegex.FindStringSubmatch(rawURL)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
