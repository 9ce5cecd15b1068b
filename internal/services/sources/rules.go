package sources

import (
	"fmt"
	"strconv"
	"strings"

	"FxPulse/pkg/util"

	"github.com/PuerkitoBio/goquery"
)

// Rule extracts one candidate value from in. An empty result means "try the next rule".
type Rule[T any] func(in T) string

// First returns the first non-empty value produced by rules, in order.
func First[T any](in T, rules ...Rule[T]) string {
	for _, r := range rules {
		if v := strings.TrimSpace(r(in)); v != "" {
			return v
		}
	}
	return ""
}

// Text reads the collapsed text of the first element matching selector.
func Text(selector string) Rule[*goquery.Selection] {
	return func(s *goquery.Selection) string {
		return util.CollapseSpace(s.Find(selector).First().Text())
	}
}

// Attr reads attr from the first element matching selector, or from the row itself
// when selector is empty.
func Attr(selector, attr string) Rule[*goquery.Selection] {
	return func(s *goquery.Selection) string {
		if selector != "" {
			s = s.Find(selector).First()
		}
		v, _ := s.Attr(attr)
		return v
	}
}

// Count renders the number of elements matching selector as prefix+n, or "" for none.
func Count(selector, prefix string) Rule[*goquery.Selection] {
	return func(s *goquery.Selection) string {
		if n := s.Find(selector).Length(); n > 0 {
			return prefix + strconv.Itoa(n)
		}
		return ""
	}
}

// Key walks a JSON object by path and stringifies the leaf.
func Key(path ...string) Rule[map[string]any] {
	return func(m map[string]any) string {
		var cur any = m
		for _, p := range path {
			obj, ok := cur.(map[string]any)
			if !ok {
				return ""
			}
			cur = obj[p]
		}
		return stringify(cur)
	}
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case map[string]any, []any:
		return ""
	default:
		return fmt.Sprint(x)
	}
}
