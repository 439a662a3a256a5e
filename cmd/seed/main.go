package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gamevault/storefront-backend/config"
	"github.com/gamevault/storefront-backend/internal/db"
	"github.com/gamevault/storefront-backend/pkg/logger"
)

func main() {
	file := flag.String("file", "", "xlsx catalog to import (default: built-in sample products)")
	replace := flag.Bool("replace", false, "delete existing products before importing")
	yes := flag.Bool("yes", false, "skip the confirmation prompt")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.Initialize(logger.Config{Level: "info", Format: "console", EnableColor: true})

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	products := db.SampleProducts()
	if *file != "" {
		fmt.Printf("Reading XLSX file: %s\n", *file)
		var skipped int
		products, skipped, err = readProductsFromXLSX(*file)
		if err != nil {
			log.Fatal("Failed to read XLSX:", err)
		}
		fmt.Printf("Skipped rows: %d\n", skipped)
	}
	fmt.Printf("Total products to import: %d\n", len(products))

	if !*yes && !confirm("Do you want to proceed with the import? (yes/no): ") {
		fmt.Println("Import cancelled.")
		return
	}

	// An empty catalog is seeded; a populated one is left alone unless
	// -replace is given.
	inserted, err := db.SeedProducts(db.GetDB(), products, *replace)
	if err != nil {
		log.Fatal("Failed to import products:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total products imported: %d\n", inserted)
}

func confirm(prompt string) bool {
	fmt.Print(prompt)
	var answer string
	fmt.Fscanln(os.Stdin, &answer)
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "yes" || answer == "y"
}
