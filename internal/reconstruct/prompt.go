package reconstruct

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/v0xg/siteclone/internal/capture"
)

const systemPrompt = `You are an expert web developer who recreates web pages as static HTML.

You will receive the original page's title, its raw HTML, structural hints (counts of images, stylesheets, scripts and links), and possibly a screenshot of the rendered page.

Produce one complete, self-contained HTML document that approximates the original:
- All CSS goes in a <style> tag in the <head>; any JavaScript in a <script> tag before </body>.
- Do not reference external stylesheets, scripts or frameworks unless the raw HTML shows them.
- For images visible in the screenshot, use <img> tags with the original URLs where the raw HTML reveals them, otherwise a visually appropriate placeholder.
- When the screenshot and the raw HTML disagree, follow the screenshot.

Respond with ONLY the HTML document, starting directly with <!DOCTYPE html>. No explanation, no markdown fences.`

// maxPromptHTMLBytes bounds how much raw HTML goes into the prompt.
// 150 KiB of markup stays comfortably inside a 200k-token context next
// to a screenshot; beyond that the tail rarely changes the layout.
const maxPromptHTMLBytes = 150 << 10

const truncationMarker = "\n<!-- input truncated -->"

// BuildPrompt assembles the reconstruction prompt for one capture. The
// screenshot may be nil when none is available or the provider cannot
// use one.
func BuildPrompt(c *capture.Capture, screenshot []byte) Prompt {
	htmlExcerpt, truncated := truncateHTML(c.RawHTML)

	var b strings.Builder
	fmt.Fprintf(&b, "Page title: %q\n", c.Title)
	fmt.Fprintf(&b, "Structure: %d images, %d stylesheets, %d scripts, %d links\n\n",
		c.Assets.Images, c.Assets.Stylesheets, c.Assets.Scripts, c.Assets.Links)
	b.WriteString("Raw HTML of the original page")
	if truncated {
		b.WriteString(" (truncated; reconstruct what is shown)")
	}
	b.WriteString(":\n\n```html\n")
	b.WriteString(htmlExcerpt)
	b.WriteString("\n```\n\nProvide the complete HTML for the recreated page, starting directly with <!DOCTYPE html>.")

	return Prompt{
		System:     systemPrompt,
		User:       b.String(),
		Screenshot: screenshot,
	}
}

// truncateHTML cuts raw to maxPromptHTMLBytes on a rune boundary and
// marks the cut, so the model knows the input is incomplete.
func truncateHTML(raw string) (string, bool) {
	if len(raw) <= maxPromptHTMLBytes {
		return raw, false
	}
	cut := maxPromptHTMLBytes
	for cut > 0 && !utf8.RuneStart(raw[cut]) {
		cut--
	}
	return raw[:cut] + truncationMarker, true
}
