package export

import (
	"encoding/json"
	"os"

	"barflow/internal/domain/model"
)

// JSONWriter writes rows as an indented JSON array, the same shape /api/data serves.
type JSONWriter struct{}

func (JSONWriter) Extension() string { return "json" }

func (JSONWriter) Write(rows []model.SeriesRow, path string) error {
	if rows == nil {
		rows = []model.SeriesRow{}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return err
	}
	return f.Close()
}
