package utils

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxMessageLength is Telegram's limit for one text message.
const MaxMessageLength = 4096

const bytesPerGB = 1e9

// FormatGB renders a byte count in decimal gigabytes with two decimals.
func FormatGB(bytes int64) string {
	return fmt.Sprintf("%.2f ГБ", float64(bytes)/bytesPerGB)
}

// FormatLimit renders a data limit; nil means unlimited.
func FormatLimit(limit *int64) string {
	if limit == nil {
		return "∞"
	}
	return FormatGB(*limit)
}

// ParseGB parses a non-negative amount of decimal gigabytes ("1.5", "1,5")
// into bytes.
func ParseGB(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	gb, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(gb) || math.IsInf(gb, 0) || gb < 0 {
		return 0, errors.New("gigabytes must be a non-negative number")
	}
	b := math.Round(gb * bytesPerGB)
	if b >= math.MaxInt64 {
		return 0, errors.New("limit is too large")
	}
	return int64(b), nil
}

// MessageLen counts text the way Telegram applies its length limit: in UTF-16
// code units, so characters outside the BMP count twice.
func MessageLen(text string) int {
	n := 0
	for _, r := range text {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// SplitMessage cuts text into chunks of at most max units (see MessageLen),
// preferring line breaks as cut points. Lines longer than max are cut at a
// space where possible and never inside an HTML tag, an entity or an open
// element such as <code>...</code>, unless that element alone exceeds max.
func SplitMessage(text string, max int) []string {
	if max <= 0 || MessageLen(text) <= max {
		return []string{text}
	}

	var (
		chunks []string
		cur    strings.Builder
		curLen int
	)
	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		n := MessageLen(line)
		if curLen+n <= max {
			cur.WriteString(line)
			curLen += n
			continue
		}
		flush()
		for n > max {
			cut := cutPoint(line, max)
			chunks = append(chunks, line[:cut])
			line = line[cut:]
			n = MessageLen(line)
		}
		cur.WriteString(line)
		curLen = n
	}
	flush()
	return chunks
}

// cutPoint returns the byte offset at which to cut s so that s[:cut] fits in
// max units. s must be longer than max.
func cutPoint(s string, max int) int {
	var (
		units, depth        int
		inTag, inEntity     bool
		tagStart            int
		lastSafe, lastSpace int
		spaceUnits          int
		prevSpace           bool
	)

	for i, r := range s {
		if i > 0 && depth == 0 && !inTag && !inEntity {
			lastSafe = i
			if prevSpace {
				lastSpace, spaceUnits = i, units
			}
		}

		w := 1
		if r >= 0x10000 {
			w = 2
		}
		if units+w > max {
			switch {
			case lastSpace > 0 && spaceUnits >= max/2:
				return lastSpace
			case lastSafe > 0:
				return lastSafe
			case i > 0:
				return i
			default:
				_, size := utf8.DecodeRuneInString(s)
				return size
			}
		}
		units += w

		prevSpace = false
		switch {
		case inTag:
			if r == '>' {
				inTag = false
				tag := s[tagStart : i+1]
				switch {
				case strings.HasPrefix(tag, "</"):
					if depth > 0 {
						depth--
					}
				case !strings.HasSuffix(tag, "/>"):
					depth++
				}
			}
		case inEntity:
			if r == ';' || r == ' ' || r == '\n' {
				inEntity = false
			}
		case r == '<':
			inTag, tagStart = true, i
		case r == '&':
			inEntity = true
		case r == ' ':
			prevSpace = true
		}
	}
	return len(s)
}
