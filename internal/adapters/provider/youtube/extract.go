package youtube

import "regexp"

// Accepted URL shapes for a submitted video link.
var videoURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/shorts/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/embed/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`^([a-zA-Z0-9_-]{11})$`), // bare video id
}

// ExtractVideoID pulls the 11-character video id out of a submitted URL.
// Returns false when no known URL shape matches.
func ExtractVideoID(raw string) (string, bool) {
	for _, p := range videoURLPatterns {
		if m := p.FindStringSubmatch(raw); m != nil {
			return m[1], true
		}
	}
	return "", false
}
