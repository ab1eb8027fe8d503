// Command loadingredients seeds the ingredients table from a CSV file.
//
// The expected format is one "name,measurement_unit" pair per line, a
// header row is tolerated. Rows already present are left untouched.
package main

import (
	"bytes"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"forkful/internal/config"
	"forkful/internal/db"
	"forkful/internal/models"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func main() {
	path := flag.String("file", "data/ingredients.csv", "path to the ingredients CSV")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := db.Init(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize database: %v\n", err)
		os.Exit(1)
	}

	imported, skipped, err := loadIngredients(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	slog.Info("Ingredients loaded", "imported", imported, "skipped", skipped)
}

func loadIngredients(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	rows, malformed, err := parseIngredientsCSV(f)
	if err != nil {
		return 0, 0, err
	}

	imported, skipped := 0, malformed
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				skipped++
			} else {
				imported++
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	return imported, skipped, nil
}

func parseIngredientsCSV(reader io.Reader) ([]models.Ingredient, int, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, 0, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	csvReader := csv.NewReader(bytes.NewReader(data))
	csvReader.FieldsPerRecord = -1

	rows := make([]models.Ingredient, 0)
	malformed := 0
	first := true
	for {
		record, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, err
		}

		name := csvValue(record, 0)
		unit := csvValue(record, 1)

		if first {
			first = false
			if strings.EqualFold(name, "name") {
				continue
			}
		}

		if name == "" || unit == "" {
			malformed++
			continue
		}

		rows = append(rows, models.Ingredient{Name: name, MeasurementUnit: unit})
	}

	return rows, malformed, nil
}

func csvValue(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
