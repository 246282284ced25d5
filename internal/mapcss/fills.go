package mapcss

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Fills reads the country fill rules back out of a stylesheet, keyed by
// country code. Rules of any other shape are skipped.
func Fills(stylesheet string) (map[string]string, error) {
	p := css.NewParser(parse.NewInputString(stylesheet), false)
	fills := make(map[string]string)

	var code string
	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			if err := p.Err(); err != nil && !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("failed to parse stylesheet: %w", err)
			}
			return fills, nil
		case css.BeginRulesetGrammar:
			code = countryCode(tokenString(data, p.Values()))
		case css.DeclarationGrammar:
			if code != "" && string(data) == "fill" {
				fills[code] = tokenString(nil, p.Values())
			}
		case css.EndRulesetGrammar:
			code = ""
		}
	}
}

func tokenString(data []byte, values []css.Token) string {
	var sb strings.Builder
	sb.Write(data)
	for _, v := range values {
		sb.Write(v.Data)
	}
	return strings.TrimSpace(sb.String())
}

// countryCode returns XX for a selector of the form ".vue-world-map #XX".
func countryCode(selector string) string {
	rest, ok := strings.CutPrefix(selector, Selector)
	if !ok {
		return ""
	}
	rest = strings.TrimSpace(rest)
	if len(rest) < 2 || rest[0] != '#' || strings.ContainsAny(rest, " .:[>+~,") {
		return ""
	}
	return rest[1:]
}
