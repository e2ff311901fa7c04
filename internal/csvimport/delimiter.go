package csvimport

import "strings"

// DetectDelimiter inspects the first line of raw CSV text and decides
// between comma and semicolon. Semicolon wins only when it strictly
// outnumbers commas; anything else (including neither appearing) is a
// comma. Spreadsheets in es-CL locales export semicolon-separated files,
// so uploads arrive in both dialects.
func DetectDelimiter(raw string) rune {
	firstLine := raw
	if idx := strings.IndexByte(raw, '\n'); idx >= 0 {
		firstLine = raw[:idx]
	}

	commas := strings.Count(firstLine, ",")
	semicolons := strings.Count(firstLine, ";")

	if semicolons > commas {
		return ';'
	}
	return ','
}
