// Package embedded provides embedded static assets for the application.
package embedded

import (
	"embed"
	"io/fs"
)

// HolidaysPath is the location of the bundled holiday dataset inside Files.
const HolidaysPath = "data/holidays.csv"

// Files contains all files embedded in the Go binary:
//   - data/holidays.csv - ANBIMA national holidays, header "Data,Feriado"
//
// The dataset is regenerated by `b3cal update --out pkg/embedded/data/holidays.csv`.
//
//go:embed data
var Files embed.FS

// Holidays returns the raw bytes of the bundled holiday dataset.
func Holidays() ([]byte, error) {
	return fs.ReadFile(Files, HolidaysPath)
}
