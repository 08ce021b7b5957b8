package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Store is a pipeline account as exported from the rep's sheet. Status is
// owned by the surrounding workflow; this tool only reads it.
type Store struct {
	StoreID   string `json:"store_id"`
	Name      string `json:"store_name"`
	City      string `json:"city"`
	StoreType string `json:"store_type"`
	Status    string `json:"status"`
}

// Order is a logged case order. Cases stays a raw string at the boundary;
// sheet exports routinely carry blanks or junk in that column.
type Order struct {
	StoreID         string `json:"store_id"`
	StoreName       string `json:"store_name"`
	BrandName       string `json:"brand_name"`
	Category        string `json:"category"`
	OrderDate       string `json:"order_date"`
	Cases           string `json:"cases"`
	OrderType       string `json:"order_type"`
	NextReorderDate string `json:"next_reorder_date"`
	SKUs            string `json:"skus,omitempty"`
}

// Activity is a logged touchpoint. An activity with a next-step date is a
// task candidate for the daily plan.
type Activity struct {
	StoreID      string `json:"store_id"`
	StoreName    string `json:"store_name"`
	ActivityType string `json:"activity_type"`
	Date         string `json:"date"`
	Outcome      string `json:"outcome"`
	NextStep     string `json:"next_step"`
	NextStepDate string `json:"next_step_date"`
	Notes        string `json:"notes"`
}

// skipNote records one soft-failed record so the batch report can surface
// what was dropped instead of swallowing it.
type skipNote struct {
	Source string `json:"source"`
	Ref    string `json:"ref"`
	Reason string `json:"reason"`
}

func parseDay(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty date")
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("unsupported date format: %s", value)
	}
	return parsed, nil
}

func formatDay(value time.Time) string {
	return value.Format(dateLayout)
}

func daysBetween(later time.Time, earlier time.Time) int {
	return int(later.Sub(earlier).Hours() / 24)
}

// parseCases reads a case count leniently: blank or non-numeric counts as 0.
func parseCases(value string) int {
	cases, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return cases
}

func loadStores(path string) ([]Store, []skipNote, error) {
	rows, colMap, err := readCSV(path)
	if err != nil {
		return nil, nil, err
	}

	idIdx, _ := findColumn(colMap, []string{"store_id", "storeid", "id"})
	nameIdx, _ := findColumn(colMap, []string{"store_name", "storename", "name", "store"})
	cityIdx, _ := findColumn(colMap, []string{"city"})
	typeIdx, _ := findColumn(colMap, []string{"store_type", "storetype", "type", "category"})
	statusIdx, _ := findColumn(colMap, []string{"status", "lifecycle", "stage"})

	stores := make([]Store, 0, len(rows))
	var skipped []skipNote
	for rowNum, record := range rows {
		store := Store{
			StoreID:   getValue(record, idIdx),
			Name:      getValue(record, nameIdx),
			City:      getValue(record, cityIdx),
			StoreType: getValue(record, typeIdx),
			Status:    getValue(record, statusIdx),
		}
		if store.StoreID == "" && store.Name == "" {
			skipped = append(skipped, skipNote{
				Source: "stores",
				Ref:    fmt.Sprintf("row %d", rowNum+2),
				Reason: "missing store id and name",
			})
			continue
		}
		stores = append(stores, store)
	}
	return stores, skipped, nil
}

func loadOrders(path string) ([]Order, []skipNote, error) {
	rows, colMap, err := readCSV(path)
	if err != nil {
		return nil, nil, err
	}

	idIdx, _ := findColumn(colMap, []string{"store_id", "storeid"})
	nameIdx, _ := findColumn(colMap, []string{"store_name", "storename", "store"})
	brandIdx, _ := findColumn(colMap, []string{"brand_name", "brandname", "brand"})
	categoryIdx, _ := findColumn(colMap, []string{"category", "product_category"})
	dateIdx, _ := findColumn(colMap, []string{"order_date", "orderdate", "date"})
	casesIdx, _ := findColumn(colMap, []string{"cases", "quantity", "qty"})
	typeIdx, _ := findColumn(colMap, []string{"order_type", "ordertype", "type", "kind"})
	reorderIdx, _ := findColumn(colMap, []string{"next_reorder_date", "nextreorderdate", "reorder_date"})
	skusIdx, _ := findColumn(colMap, []string{"skus", "sku"})

	orders := make([]Order, 0, len(rows))
	var skipped []skipNote
	for rowNum, record := range rows {
		order := Order{
			StoreID:         getValue(record, idIdx),
			StoreName:       getValue(record, nameIdx),
			BrandName:       getValue(record, brandIdx),
			Category:        getValue(record, categoryIdx),
			OrderDate:       getValue(record, dateIdx),
			Cases:           getValue(record, casesIdx),
			OrderType:       getValue(record, typeIdx),
			NextReorderDate: getValue(record, reorderIdx),
			SKUs:            getValue(record, skusIdx),
		}
		if order.StoreID == "" && order.StoreName == "" {
			skipped = append(skipped, skipNote{
				Source: "orders",
				Ref:    fmt.Sprintf("row %d", rowNum+2),
				Reason: "missing store reference",
			})
			continue
		}
		orders = append(orders, order)
	}
	return orders, skipped, nil
}

func loadActivities(path string) ([]Activity, []skipNote, error) {
	rows, colMap, err := readCSV(path)
	if err != nil {
		return nil, nil, err
	}

	idIdx, _ := findColumn(colMap, []string{"store_id", "storeid"})
	nameIdx, _ := findColumn(colMap, []string{"store_name", "storename", "store"})
	typeIdx, _ := findColumn(colMap, []string{"activity_type", "activitytype", "type"})
	dateIdx, _ := findColumn(colMap, []string{"date", "activity_date", "contacted_at"})
	outcomeIdx, _ := findColumn(colMap, []string{"outcome", "result", "status"})
	nextStepIdx, _ := findColumn(colMap, []string{"next_step", "nextstep", "action"})
	nextDateIdx, _ := findColumn(colMap, []string{"next_step_date", "nextstepdate", "due_date", "due"})
	notesIdx, _ := findColumn(colMap, []string{"notes", "summary", "ai_summary"})

	activities := make([]Activity, 0, len(rows))
	var skipped []skipNote
	for rowNum, record := range rows {
		activity := Activity{
			StoreID:      getValue(record, idIdx),
			StoreName:    getValue(record, nameIdx),
			ActivityType: getValue(record, typeIdx),
			Date:         getValue(record, dateIdx),
			Outcome:      getValue(record, outcomeIdx),
			NextStep:     getValue(record, nextStepIdx),
			NextStepDate: getValue(record, nextDateIdx),
			Notes:        getValue(record, notesIdx),
		}
		if activity.StoreID == "" && activity.StoreName == "" {
			skipped = append(skipped, skipNote{
				Source: "activities",
				Ref:    fmt.Sprintf("row %d", rowNum+2),
				Reason: "missing store reference",
			})
			continue
		}
		activities = append(activities, activity)
	}
	return activities, skipped, nil
}

func readCSV(path string) ([][]string, map[string]int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("unable to read header: %w", err)
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, nil, fmt.Errorf("unable to read CSV: %w", err)
		}
		if len(record) == 0 {
			continue
		}
		rows = append(rows, record)
	}
	return rows, normalizeHeaders(headers), nil
}

func normalizeHeaders(headers []string) map[string]int {
	result := make(map[string]int, len(headers))
	for idx, header := range headers {
		normalized := normalizeHeader(header)
		if _, exists := result[normalized]; !exists {
			result[normalized] = idx
		}
	}
	return result
}

func normalizeHeader(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	value = strings.ReplaceAll(value, " ", "")
	value = strings.ReplaceAll(value, "_", "")
	value = strings.ReplaceAll(value, "-", "")
	return value
}

func findColumn(headers map[string]int, names []string) (int, bool) {
	for _, name := range names {
		if idx, ok := headers[normalizeHeader(name)]; ok {
			return idx, true
		}
	}
	return -1, false
}

func getValue(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// storeRef names a store for display and dedup, preferring the id.
func storeRef(id string, name string) string {
	if id != "" {
		return id
	}
	return name
}
