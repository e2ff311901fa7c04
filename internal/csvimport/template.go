package csvimport

import (
	"bytes"
	"strings"
)

// TemplateDelimiter selects the downloadable template dialect.
type TemplateDelimiter string

const (
	// TemplateComma suits Mac/Linux spreadsheet locales.
	TemplateComma TemplateDelimiter = "comma"
	// TemplateSemicolon suits Windows/Excel es-CL locales; the file
	// carries a UTF-8 BOM so Excel picks up the encoding.
	TemplateSemicolon TemplateDelimiter = "semicolon"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// exampleRow gives users one filled-in line to copy the shape of.
var exampleRow = []string{
	"-33.4489", "-70.6693", "1234", "567", "2023", "CBR Santiago",
	"Juan Pérez", "María González", "Casa en Providencia", "Providencia",
	"123-45", "2023-05-15", "120.5", "85000000", "Esquina nororiente",
}

// Template renders the downloadable CSV template in the requested
// dialect: the canonical header row plus one example row.
func Template(d TemplateDelimiter) []byte {
	sep := ","
	var buf bytes.Buffer

	if d == TemplateSemicolon {
		sep = ";"
		buf.Write(utf8BOM)
	}

	buf.WriteString(strings.Join(Columns, sep))
	buf.WriteString("\n")
	buf.WriteString(strings.Join(exampleRow, sep))
	buf.WriteString("\n")

	return buf.Bytes()
}

// TemplateFilename names the download per dialect.
func TemplateFilename(d TemplateDelimiter) string {
	if d == TemplateSemicolon {
		return "referenciales-template-windows.csv"
	}
	return "referenciales-template.csv"
}
