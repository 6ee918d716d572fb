package catalog

import (
	"fmt"
	"math"
	"path"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// PlaceholderImage is shown for products without a usable image.
const PlaceholderImage = "/images/no-image.png"

var imageExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true,
	"svg": true, "bmp": true, "tiff": true, "ico": true, "avif": true,
}

// FormatPrice renders a price in dollars.
func FormatPrice(price float64) string {
	return "$" + strconv.FormatFloat(price, 'f', -1, 64)
}

// DateOptions controls FormatDate.
type DateOptions struct {
	ShowTime bool
	// Use24Hour switches the time to a 24-hour clock.
	Use24Hour bool
}

// FormatDate renders t as MM/DD/YYYY, optionally followed by the time.
func FormatDate(t time.Time, opts DateOptions) string {
	date := t.Format("01/02/2006")
	if !opts.ShowTime {
		return date
	}
	if opts.Use24Hour {
		return date + ", " + t.Format("15:04")
	}
	return date + ", " + t.Format("03:04 PM")
}

// FormatRelativeTime renders how long ago t was relative to now.
func FormatRelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	if diff < 0 {
		return "just now"
	}

	seconds := int64(diff / time.Second)
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24
	months := int64(math.Floor(float64(days) / 30.44))
	years := int64(math.Floor(float64(days) / 365.25))

	switch {
	case seconds < 60:
		return plural(seconds, "second")
	case minutes < 60:
		return plural(minutes, "minute")
	case hours < 24:
		return plural(hours, "hour")
	case days < 30:
		return plural(days, "day")
	case months < 12:
		return plural(months, "month")
	default:
		return plural(years, "year")
	}
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// BeautifyText turns a slug such as "smart-phones" into "Smart Phones".
func BeautifyText(input string) string {
	words := strings.Split(input, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

// ValidImageURL returns imageURL when it ends in a known image extension
// and PlaceholderImage otherwise.
func ValidImageURL(imageURL string) string {
	if imageURL == "" {
		return PlaceholderImage
	}
	lower := strings.ToLower(imageURL)
	ext := lower
	if i := strings.LastIndexByte(lower, '.'); i >= 0 {
		ext = lower[i+1:]
	}
	if imageExtensions[ext] {
		return imageURL
	}
	return PlaceholderImage
}

// ImageFilename derives a download filename from an image URL.
func ImageFilename(imageURL string) string {
	const fallback = "product-inventory-image"
	name := path.Base(strings.SplitN(imageURL, "?", 2)[0])
	if name == "." || name == "/" || name == "" {
		return fallback
	}
	return name
}
