package classify

import "github.com/reiver/go-utf8s"

// DecodeRune decodes the UTF-8 rune starting at s[i] and returns it along
// with its byte width, so that chunk/word boundaries never split a
// multi-byte rune in two.
func DecodeRune(s []byte, i int) (rune, int) {
	if i < 0 || i >= len(s) {
		return 0, 0
	}

	r, size := utf8s.DecodeRune(s[i:])
	if size <= 0 {
		return rune(s[i]), 1
	}

	return r, size
}
