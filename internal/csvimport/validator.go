package csvimport

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ValidationError describes one problem with one field of one row.
// Row numbers are 1-based over the parsed record list, excluding the
// header line; messages are user-facing Spanish, since the users fixing
// the source files are Chilean appraisers.
type ValidationError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// requiredFields is the fixed list of columns every row must carry.
// observaciones is deliberately absent: free text is optional.
var requiredFields = []string{
	"lat", "lng", "fojas", "numero", "anio", "cbr",
	"comprador", "vendedor", "predio", "comuna", "rol",
	"fechaescritura", "superficie", "monto",
}

// fechaFormats are the date layouts accepted for fechaescritura.
var fechaFormats = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"2006/01/02",
}

// Validate applies the per-row rules to every record and returns every
// error found. It never short-circuits: the caller rejects the whole
// import when the list is non-empty, and the user wants the complete
// list to fix the file in one pass.
func Validate(records []Record) []ValidationError {
	var errs []ValidationError

	for i, record := range records {
		row := i + 1
		errs = append(errs, validateRow(row, record)...)
	}

	return errs
}

func validateRow(row int, record Record) []ValidationError {
	var errs []ValidationError

	// Required-field pass. A trimmed value is present when non-empty;
	// the literal "0" is a non-empty string, so zero is never treated
	// as missing.
	for _, field := range requiredFields {
		if record[field] == "" {
			errs = append(errs, ValidationError{
				Row:     row,
				Field:   field,
				Message: fmt.Sprintf("Campo requerido faltante: %s", field),
			})
		}
	}

	// Type and range pass, only over present values so one empty cell
	// yields exactly one error.
	if v := record["lat"]; v != "" {
		lat, err := parseFloat(v)
		if err != nil {
			errs = append(errs, ValidationError{row, "lat", fmt.Sprintf("Latitud inválida: %s", v)})
		} else if lat < -90 || lat > 90 {
			errs = append(errs, ValidationError{row, "lat", fmt.Sprintf("Latitud fuera de rango [-90, 90]: %s", v)})
		}
	}
	if v := record["lng"]; v != "" {
		lng, err := parseFloat(v)
		if err != nil {
			errs = append(errs, ValidationError{row, "lng", fmt.Sprintf("Longitud inválida: %s", v)})
		} else if lng < -180 || lng > 180 {
			errs = append(errs, ValidationError{row, "lng", fmt.Sprintf("Longitud fuera de rango [-180, 180]: %s", v)})
		}
	}
	if v := record["numero"]; v != "" {
		if _, err := strconv.Atoi(v); err != nil {
			errs = append(errs, ValidationError{row, "numero", fmt.Sprintf("Número inválido: %s", v)})
		}
	}
	if v := record["anio"]; v != "" {
		anio, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, ValidationError{row, "anio", fmt.Sprintf("Año inválido: %s", v)})
		} else if anio < 1800 || anio > time.Now().Year() {
			errs = append(errs, ValidationError{row, "anio", fmt.Sprintf("Año fuera de rango: %s", v)})
		}
	}
	if v := record["superficie"]; v != "" {
		superficie, err := parseFloat(v)
		if err != nil {
			errs = append(errs, ValidationError{row, "superficie", fmt.Sprintf("Superficie inválida: %s", v)})
		} else if superficie <= 0 {
			errs = append(errs, ValidationError{row, "superficie", fmt.Sprintf("Superficie debe ser mayor que cero: %s", v)})
		}
	}
	if v := record["monto"]; v != "" {
		monto, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, ValidationError{row, "monto", fmt.Sprintf("Monto inválido: %s", v)})
		} else if monto <= 0 {
			errs = append(errs, ValidationError{row, "monto", fmt.Sprintf("Monto debe ser mayor que cero: %s", v)})
		}
	}
	if v := record["fechaescritura"]; v != "" {
		fecha, err := ParseFecha(v)
		if err != nil {
			errs = append(errs, ValidationError{row, "fechaescritura", fmt.Sprintf("Fecha de escritura inválida: %s", v)})
		} else if fecha.After(time.Now()) {
			errs = append(errs, ValidationError{row, "fechaescritura", fmt.Sprintf("Fecha de escritura en el futuro: %s", v)})
		}
	}

	return errs
}

// parseFloat accepts both decimal-point and decimal-comma literals;
// semicolon-delimited files from Chilean spreadsheets use the comma.
func parseFloat(v string) (float64, error) {
	return strconv.ParseFloat(strings.Replace(v, ",", ".", 1), 64)
}

// ParseFecha parses a fechaescritura value in any accepted layout.
func ParseFecha(v string) (time.Time, error) {
	for _, layout := range fechaFormats {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", v)
}
