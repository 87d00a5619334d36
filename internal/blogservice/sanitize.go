package blogservice

import "regexp"

var (
	scriptElementRX = regexp.MustCompile(`(?is)<\s*script[^>]*>.*?<\s*/\s*script\s*>`)
	// an opener or closer left without its partner
	scriptTagRX = regexp.MustCompile(`(?i)<\s*/?\s*script[^>]*>`)
)

// stripScripts removes <script> elements from post content, including ones
// spanning several lines, then any unpaired script tag.
func stripScripts(content string) string {
	content = scriptElementRX.ReplaceAllString(content, "")
	return scriptTagRX.ReplaceAllString(content, "")
}
