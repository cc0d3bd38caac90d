package stringnorm

import "regexp"

// titleCleanPatterns strips remaster/edition suffixes that are not
// musically significant, while preserving "(Remix)", "(Live)", and
// "(Radio Edit)" (spec §4.4.3).
var titleCleanPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s*\(\d{4}\s+remaster(?:ed)?\)`),
	regexp.MustCompile(`(?i)\s*\(remaster(?:ed)?\s+\d{4}\)`),
	regexp.MustCompile(`(?i)\s*\(\d+-bit\s+Studio\s+Master\)`),
	regexp.MustCompile(`(?i)\s*\(Studio\s+Master\)`),
	regexp.MustCompile(`(?i)\s*\(Deluxe\s+Edition\)`),
	regexp.MustCompile(`(?i)\s*\(Expanded\s+Edition\)`),
	regexp.MustCompile(`(?i)\s*\(Anniversary\s+Edition\)`),
	regexp.MustCompile(`(?i)\s*\(Bonus\s+Track\s+Version\)`),
}

// CleanTitle strips every remaster/edition suffix recognized by
// titleCleanPatterns from title, leaving musically significant
// parentheticals like "(Remix)" and "(Live)" untouched.
func CleanTitle(title string) string {
	for _, re := range titleCleanPatterns {
		title = re.ReplaceAllString(title, "")
	}
	return title
}
