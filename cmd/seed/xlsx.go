package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gamevault/storefront-backend/internal/app/model"
	"github.com/xuri/excelize/v2"
)

// catalogColumns are the header names the import sheet must carry, matched
// case-insensitively in any order.
var catalogColumns = []string{"title", "description", "price", "category", "imageurl", "stock", "brand"}

// readProductsFromXLSX reads the first sheet. Rows with missing fields, an
// unknown category or unparseable numbers are skipped and counted.
func readProductsFromXLSX(path string) ([]model.Product, int, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, 0, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("no data found in XLSX file")
	}

	index, err := headerIndex(rows[0])
	if err != nil {
		return nil, 0, err
	}

	var products []model.Product
	skipped := 0
	for _, row := range rows[1:] {
		product, ok := parseProductRow(row, index)
		if !ok {
			skipped++
			continue
		}
		products = append(products, product)
	}
	return products, skipped, nil
}

func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range catalogColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}
	return index, nil
}

func parseProductRow(row []string, index map[string]int) (model.Product, bool) {
	cell := func(col string) string {
		i := index[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	price, err := strconv.ParseFloat(cell("price"), 64)
	if err != nil || price < 0 {
		return model.Product{}, false
	}
	stock, err := strconv.Atoi(cell("stock"))
	if err != nil || stock < 0 {
		return model.Product{}, false
	}

	product := model.Product{
		Title:       cell("title"),
		Description: cell("description"),
		Price:       price,
		Category:    model.ProductCategory(cell("category")),
		ImageURL:    cell("imageurl"),
		Stock:       stock,
		Brand:       cell("brand"),
	}
	if product.Title == "" || product.Description == "" || product.ImageURL == "" || product.Brand == "" {
		return model.Product{}, false
	}
	if !product.Category.IsValid() {
		return model.Product{}, false
	}
	return product, true
}
