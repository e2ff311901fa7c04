package mapfeed

import (
	"strconv"
	"time"
)

// FormatCLP renders an amount as Chilean pesos the way the dashboard
// shows them: "$85.000.000". CLP has no cents, so there is never a
// decimal part.
func FormatCLP(monto int64) string {
	negative := monto < 0
	if negative {
		monto = -monto
	}

	digits := strconv.FormatInt(monto, 10)

	var out []byte
	for i, d := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, d)
	}

	formatted := "$" + string(out)
	if negative {
		formatted = "-" + formatted
	}
	return formatted
}

// FormatFecha renders a date as dd-mm-yyyy, the localized form used
// across the Chilean registry paperwork.
func FormatFecha(t time.Time) string {
	return t.Format("02-01-2006")
}
