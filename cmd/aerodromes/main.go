package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/GERNAVSBIZ/movimento/internal/domain/entity"
	repo "github.com/GERNAVSBIZ/movimento/internal/interface/repository"
)

// Seeds the aerodrome reference table from a CSV export with the
// columns icao,name,city,state.
func main() {
	filePath := flag.String("file", "data/aerodromos.csv", "path to the aerodrome CSV export")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	dsn := os.Getenv("POSTGRES_DSN")
	if strings.TrimSpace(dsn) == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("connecting to postgres failed: %v", err)
	}

	if err := db.AutoMigrate(&repo.Aerodromelist{}); err != nil {
		log.Fatalf("migrating the aerodrome table failed: %v", err)
	}

	aerodromes, err := readAerodromes(*filePath)
	if err != nil {
		log.Fatal(err)
	}
	if len(aerodromes) == 0 {
		log.Fatal("no aerodromes found in the CSV export")
	}

	aerodromeRepo := repo.NewGormAerodromeRepository(db)
	if err := aerodromeRepo.UpsertBatch(context.Background(), aerodromes); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}

	log.Printf("Seeded %d aerodromes from %s", len(aerodromes), *filePath)
}

func readAerodromes(path string) ([]*entity.Aerodrome, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening CSV export: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 4
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV export: %w", err)
	}

	aerodromes := make([]*entity.Aerodrome, 0, len(rows))
	for i, row := range rows {
		code := strings.ToUpper(strings.TrimSpace(row[0]))
		if i == 0 && strings.EqualFold(code, "icao") {
			// header row
			continue
		}
		if code == "" {
			continue
		}
		aerodromes = append(aerodromes, &entity.Aerodrome{
			Code:  code,
			Name:  strings.TrimSpace(row[1]),
			City:  strings.TrimSpace(row[2]),
			State: strings.TrimSpace(row[3]),
		})
	}
	return aerodromes, nil
}
