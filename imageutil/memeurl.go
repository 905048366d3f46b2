package imageutil

import "strings"

// memeEscaper encodes caption text for use in a meme-template URL path.
// The replacements follow the memegen.link path conventions.
var memeEscaper = strings.NewReplacer(
	"_", "__",
	"-", "--",
	" ", "_",
	"?", "~q",
	"&", "~a",
	"%", "~p",
	"#", "~h",
	"/", "~s",
	"\\", "~b",
	"\"", "''",
)

const memeBaseURL = "https://api.memegen.link/images"

// MemeURL builds a meme-template image URL from a template ID and caption
// lines.  It is a pure string formatter, not a protocol client; empty
// captions render as the placeholder segment "_".
func MemeURL(template, top, bottom string) string {
	return memeBaseURL + "/" + template + "/" + memeSegment(top) + "/" + memeSegment(bottom) + ".png"
}

func memeSegment(s string) string {
	if s == "" {
		return "_"
	}
	return memeEscaper.Replace(s)
}
