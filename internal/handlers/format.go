package handlers

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/ginger-beaver/OutlineBot/internal/outline"
	"github.com/ginger-beaver/OutlineBot/internal/utils"
)

// UsageLine renders "used / limit" for a key.
func UsageLine(k outline.AccessKey) string {
	return utils.FormatGB(k.UsedBytes) + " / " + utils.FormatLimit(k.DataLimit)
}

// StatsText lists keys by usage, heaviest first.
func StatsText(keys []outline.AccessKey) string {
	if len(keys) == 0 {
		return "Ключей нет."
	}
	sorted := make([]outline.AccessKey, len(keys))
	copy(sorted, keys)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UsedBytes > sorted[j].UsedBytes
	})

	lines := make([]string, 0, len(sorted))
	for _, k := range sorted {
		lines = append(lines, fmt.Sprintf("%s: %s", k.Name, UsageLine(k)))
	}
	return strings.Join(lines, ";\n")
}

func codeURL(k outline.AccessKey, tag string) string {
	return "<code>" + html.EscapeString(k.DisplayURL(tag)) + "</code>"
}

func keyHTML(k outline.AccessKey, tag string) string {
	return html.EscapeString(k.String()) + "\n" + codeURL(k, tag)
}
