package catalog

import "strings"

// ParseAcceptLanguage extracts ordered unique two-letter language codes
// from an Accept-Language header. Quality weights and locale sub-tags are
// stripped: "en-US,en;q=0.9,fr;q=0.8" yields ["en", "fr"].
func ParseAcceptLanguage(header string) []string {
	if header == "" {
		return nil
	}
	seen := make(map[string]bool)
	var codes []string
	for _, part := range strings.Split(header, ",") {
		code := strings.TrimSpace(part)
		if i := strings.IndexByte(code, ';'); i >= 0 {
			code = code[:i]
		}
		if i := strings.IndexAny(code, "-_"); i >= 0 {
			code = code[:i]
		}
		code = strings.ToLower(strings.TrimSpace(code))
		if len(code) != 2 || seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	return codes
}
