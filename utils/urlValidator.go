package util

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"ytdownloader/models"
)

var hostToPlatform = map[string]string{
	"youtube.com":        "YouTube",
	"m.youtube.com":      "YouTube",
	"music.youtube.com":  "YouTube",
	"gaming.youtube.com": "YouTube",
	"youtu.be":           "YouTube",
	"vimeo.com":          "Vimeo",
	"player.vimeo.com":   "Vimeo",
	"facebook.com":       "Facebook",
	"m.facebook.com":     "Facebook",
	"fb.watch":           "Facebook",
	"dailymotion.com":    "Dailymotion",
	"dai.ly":             "Dailymotion",
	"instagram.com":      "Instagram",
	"twitter.com":        "Twitter",
	"x.com":              "Twitter",
	"tiktok.com":         "TikTok",
	"vm.tiktok.com":      "TikTok",
	"twitch.tv":          "Twitch",
	"clips.twitch.tv":    "Twitch",
	"reddit.com":         "Reddit",
	"v.redd.it":          "Reddit",
	"rumble.com":         "Rumble",
	"ted.com":            "TED",
	"streamable.com":     "Streamable",
	"bilibili.com":       "Bilibili",
	"bandcamp.com":       "Bandcamp",
	"soundcloud.com":     "SoundCloud",
}

// DetectPlatform maps a URL's host onto a platform yt-dlp can extract from.
func DetectPlatform(inputURL string) models.PlatformInfo {
	parsed, err := url.Parse(strings.TrimSpace(inputURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return models.PlatformInfo{Platform: "Unknown", Reason: "not an absolute URL"}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return models.PlatformInfo{Platform: "Unknown", Reason: "unsupported scheme " + parsed.Scheme}
	}

	host := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
	platform, exists := hostToPlatform[host]
	if !exists {
		return models.PlatformInfo{Platform: "Unknown", Reason: "unsupported host " + host}
	}
	return models.PlatformInfo{Platform: platform, IsSupported: true}
}

var (
	youtubeQueryHosts = map[string]bool{
		"youtube.com":        true,
		"www.youtube.com":    true,
		"m.youtube.com":      true,
		"music.youtube.com":  true,
		"gaming.youtube.com": true,
	}
	youtubePathURL = regexp.MustCompile(`^https?://(youtu\.be/|(www\.)?youtube\.com/(embed|v|shorts|live)/)`)
	youtubeIDRe    = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

	errNotYouTube = errors.New("not a YouTube domain")
)

// YouTubeVideoID extracts the 11 character video id from a watch, short,
// embed or youtu.be link.
func YouTubeVideoID(rawURL string) (string, error) {
	link := strings.TrimSpace(rawURL)
	parsed, err := url.Parse(link)
	if err != nil || parsed.Host == "" {
		return "", fmt.Errorf("invalid URL %q", rawURL)
	}

	id := parsed.Query().Get("v")
	host := strings.ToLower(parsed.Hostname())
	switch {
	case id == "" && youtubePathURL.MatchString(link):
		paths := strings.Split(parsed.Path, "/")
		if host == "youtu.be" && len(paths) > 1 {
			id = paths[1]
		} else if len(paths) > 2 {
			id = paths[2]
		}
	case !youtubeQueryHosts[host]:
		return "", errNotYouTube
	}

	if id == "" {
		return "", fmt.Errorf("no video id found in %q", rawURL)
	}
	if len(id) > 11 {
		id = id[:11]
	}
	if !youtubeIDRe.MatchString(id) {
		return "", fmt.Errorf("video id %q does not match expected format", id)
	}
	return id, nil
}

// IsYouTubeURL reports whether a video id can be extracted from rawURL.
func IsYouTubeURL(rawURL string) bool {
	_, err := YouTubeVideoID(rawURL)
	return err == nil
}
