package main

import (
	"flag"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"steam-catalog/internal/config"
	"steam-catalog/internal/database"
	"steam-catalog/internal/models"
)

var (
	outFile   = flag.String("out", "steam-catalog.xlsx", "output xlsx file")
	appType   = flag.String("type", "", "only export apps of this type (game, dlc, demo, ...)")
	batchSize = flag.Int("batch", 500, "rows loaded per database batch")
)

const sheetName = "Catalog"

var headers = []string{
	"Appid", "Name", "Type", "Release Date", "Coming Soon", "Free",
	"Price", "Currency", "Discount %", "Metacritic",
	"Developers", "Publishers", "Genres", "Windows", "Mac", "Linux",
	"Last Details Update",
}

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetName)
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, h)
	}

	q := db.Model(&models.SteamApp{}).
		Preload("Detail").Preload("PriceInfo").
		Preload("Developers").Preload("Publishers").Preload("Genres").
		Order("appid ASC")
	if *appType != "" {
		q = q.Joins("JOIN steam_app_details ON steam_app_details.steam_app_id = steam_apps.id").
			Where("steam_app_details.type = ?", *appType)
	}

	row := 2
	var apps []models.SteamApp
	result := q.FindInBatches(&apps, *batchSize, func(tx *gorm.DB, batch int) error {
		for _, app := range apps {
			writeRow(f, row, &app)
			row++
		}
		return nil
	})
	if result.Error != nil {
		log.Fatal("Export query failed:", result.Error)
	}

	if err := f.SaveAs(*outFile); err != nil {
		log.Fatal("Failed to write xlsx:", err)
	}
	log.Printf("Exported %d apps to %s", row-2, *outFile)
}

func writeRow(f *excelize.File, row int, app *models.SteamApp) {
	set := func(col int, value interface{}) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		f.SetCellValue(sheetName, cell, value)
	}

	set(1, app.Appid)
	set(2, app.Name)

	if d := app.Detail; d != nil {
		if d.Type != nil {
			set(3, *d.Type)
		}
		if d.ReleaseDate != nil {
			set(4, d.ReleaseDate.Format("2006-01-02"))
		}
		set(5, d.ComingSoon)
		set(6, d.IsFree)
		if d.MetacriticScore != nil {
			set(10, *d.MetacriticScore)
		}
		set(14, d.Windows)
		set(15, d.Mac)
		set(16, d.Linux)
	}

	if p := app.PriceInfo; p != nil {
		if p.Final != nil {
			set(7, float64(*p.Final)/100)
		}
		if p.Currency != nil {
			set(8, *p.Currency)
		}
		set(9, p.DiscountPercent)
	}

	set(11, joinNames(developerNames(app.Developers)))
	set(12, joinNames(publisherNames(app.Publishers)))
	set(13, joinNames(genreNames(app.Genres)))

	if app.LastDetailsUpdate != nil {
		set(17, app.LastDetailsUpdate.Format(time.RFC3339))
	}
}

func developerNames(rows []models.SteamAppDeveloper) []string {
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Name
	}
	return names
}

func publisherNames(rows []models.SteamAppPublisher) []string {
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Name
	}
	return names
}

func genreNames(rows []models.SteamAppGenre) []string {
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Description
	}
	return names
}

func joinNames(names []string) string {
	return strings.Join(names, ", ")
}
