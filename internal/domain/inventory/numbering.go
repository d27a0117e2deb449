package inventory

import (
	"fmt"
	"time"
)

// DistributionNumberPrefix prefijo de los números de traslado.
const DistributionNumberPrefix = "DIST"

// DistributionNumber arma el número legible DIST-YYYYMMDD-NNNN para el día y consecutivo dados.
func DistributionNumber(day time.Time, seq int) string {
	return fmt.Sprintf("%s-%s-%04d", DistributionNumberPrefix, day.Format("20060102"), seq)
}

// DayOf trunca t al inicio del día en su propia zona horaria.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
