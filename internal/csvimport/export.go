package csvimport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/referenciales/referenciales/internal/entities"
)

// Export writes referenciales as CSV in the template column order, so a
// file exported here round-trips through the importer unchanged.
func Export(w io.Writer, refs []entities.Referencial) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, ref := range refs {
		row := []string{
			strconv.FormatFloat(ref.Lat, 'f', -1, 64),
			strconv.FormatFloat(ref.Lng, 'f', -1, 64),
			ref.Fojas,
			strconv.Itoa(ref.Numero),
			strconv.Itoa(ref.Anio),
			ref.CBR,
			ref.Comprador,
			ref.Vendedor,
			ref.Predio,
			ref.Comuna,
			ref.Rol,
			ref.FechaEscritura.Format("2006-01-02"),
			strconv.FormatFloat(ref.Superficie, 'f', -1, 64),
			strconv.FormatInt(ref.Monto, 10),
			ref.Observaciones,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for referencial %d: %w", ref.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
