package finder

import (
	"strings"

	"github.com/dlclark/regexp2"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

var furigana = regexp2.MustCompile(`\[(.*?)\]`, regexp2.None)

// StripField returns the visible text of a field value: markup is removed,
// character references are decoded, bracketed furigana readings are dropped
// and the result is NFC-normalized.
func StripField(value string) string {
	sb := &strings.Builder{}
	z := html.NewTokenizer(strings.NewReader(value))

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.TextToken {
			sb.Write(z.Text())
		}
	}

	text, err := furigana.Replace(sb.String(), "", -1, -1)
	if err != nil {
		text = sb.String()
	}

	return norm.NFC.String(text)
}
