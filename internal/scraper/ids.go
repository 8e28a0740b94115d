package scraper

import (
	"errors"
	"net/url"
	"regexp"
)

// ErrInvalidFormat is returned when a listing URL does not end in <digits>_<digits>.html
var ErrInvalidFormat = errors.New("invalid UR property URL format")

var propertyPathRe = regexp.MustCompile(`/(\d+)_(\d+)\.html$`)

// ExtractPropertyIDs extracts shisya and danchi from a UR property URL.
//
//	https://www.ur-net.go.jp/chintai/kanto/tokyo/20_7140.html -> "20", "7140"
func ExtractPropertyIDs(rawURL string) (shisya, danchi string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() {
		return "", "", ErrInvalidFormat
	}

	match := propertyPathRe.FindStringSubmatch(u.EscapedPath())
	if match == nil {
		return "", "", ErrInvalidFormat
	}
	return match[1], match[2], nil
}
