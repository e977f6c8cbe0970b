package ui

import "strings"

// The GITLAB banner shown while the panel is hidden. 6 rows tall.
var bannerRaw = ` ██████╗ ██╗████████╗██╗      █████╗ ██████╗
██╔════╝ ██║╚══██╔══╝██║     ██╔══██╗██╔══██╗
██║  ███╗██║   ██║   ██║     ███████║██████╔╝
██║   ██║██║   ██║   ██║     ██╔══██║██╔══██╗
╚██████╔╝██║   ██║   ███████╗██║  ██║██████╔╝
 ╚═════╝ ╚═╝   ╚═╝   ╚══════╝╚═╝  ╚═╝╚═════╝`

// bannerRows is the banner height. Every glyph matches it.
const bannerRows = 6

var blockPeriod = [bannerRows]string{
	"   ",
	"   ",
	"   ",
	"   ",
	"██╗",
	"╚═╝",
}

// bannerFrames are the gradient-rendered frames: GITLAB, GITLAB., GITLAB..,
// GITLAB... The trailing dots play while the websocket is still connecting.
var bannerFrames = func() []string {
	base := strings.Split(bannerRaw, "\n")
	width := 0
	for _, l := range base {
		if n := len([]rune(l)); n > width {
			width = n
		}
	}

	frames := make([]string, 4)
	for dots := range frames {
		lines := make([]string, bannerRows)
		for row := range lines {
			line := base[row]
			line += strings.Repeat(" ", width-len([]rune(line)))
			for i := 0; i < dots; i++ {
				line += " " + blockPeriod[row]
			}
			lines[row] = line
		}
		frames[dots] = GradientText(strings.Join(lines, "\n"), GradientStart, GradientEnd)
	}
	return frames
}()

// Banner returns the static banner.
func Banner() string {
	return bannerFrames[0]
}

// BannerLines returns the banner frame for the given tick as individual lines.
// Always returns exactly bannerRows lines.
func BannerLines(frame int) []string {
	if frame < 0 {
		frame = -frame
	}
	return strings.Split(bannerFrames[frame%len(bannerFrames)], "\n")
}
