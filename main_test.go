package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTempCSV(t *testing.T, name string, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestLoadStoresHeaderAliases(t *testing.T) {
	csvData := "Store ID,Name,City,Type,Status\n" +
		"S-1,ABC Liquor,Miami,liquor store,new\n" +
		"S-2,Corner Store,Tampa,convenience store (c-store),customer\n" +
		",,,,new\n"

	stores, skipped, err := loadStores(writeTempCSV(t, "stores.csv", csvData))
	if err != nil {
		t.Fatalf("load stores: %v", err)
	}
	if len(stores) != 2 {
		t.Fatalf("expected 2 stores, got %d", len(stores))
	}
	if stores[0].StoreID != "S-1" || stores[0].Status != "new" || stores[0].City != "Miami" {
		t.Fatalf("unexpected store: %+v", stores[0])
	}
	if len(skipped) != 1 || skipped[0].Source != "stores" {
		t.Fatalf("expected one skip note for the empty row, got %+v", skipped)
	}
}

func TestLoadOrdersHeaderAliases(t *testing.T) {
	csvData := "store_name,brand,order date,qty,kind,next reorder date\n" +
		"Best Cafe,Bodhi Bubbles,2024-06-01,5,first,2024-06-25\n"

	orders, skipped, err := loadOrders(writeTempCSV(t, "orders.csv", csvData))
	if err != nil {
		t.Fatalf("load orders: %v", err)
	}
	if len(skipped) != 0 {
		t.Fatalf("expected no skips, got %+v", skipped)
	}
	if len(orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders))
	}
	order := orders[0]
	if order.BrandName != "Bodhi Bubbles" || order.Cases != "5" || order.OrderType != "first" || order.NextReorderDate != "2024-06-25" {
		t.Fatalf("unexpected order: %+v", order)
	}
}

func TestBuildPipelineReportEndToEnd(t *testing.T) {
	storesCSV := "store_id,store_name,city,store_type,status\n" +
		"S-1,ABC Liquor,Miami,liquor store,new\n" +
		"S-2,Best Cafe,Miami,cafe,customer\n" +
		"S-3,Corner Store,Tampa,c-store,contacted\n"

	ordersCSV := "store_id,store_name,brand_name,category,order_date,cases,order_type,next_reorder_date\n" +
		"S-2,Best Cafe,Bodhi Bubbles,beverages,2024-05-13,5,first,2024-06-12\n" +
		"S-2,Best Cafe,Bodhi Bubbles,beverages,2024-05-01,2,reorder,2024-06-01\n" +
		"S-3,Corner Store,Kush Kube,wellness,2024-05-16,3,first,\n"

	activitiesCSV := "store_id,store_name,activity_type,date,outcome,next_step,next_step_date,notes\n" +
		"S-1,ABC Liquor,call,2024-06-05,interested,Call to follow up,2024-06-10,Asked about pricing\n" +
		"S-3,Corner Store,email,2024-06-03,no_response,Send email with catalog,2024-06-09,Requested catalog\n" +
		"S-2,Best Cafe,visit,2024-06-04,ordered,Visit with samples,2024-06-20,Wants samples\n"

	stores, storeSkips, err := loadStores(writeTempCSV(t, "stores.csv", storesCSV))
	if err != nil {
		t.Fatalf("load stores: %v", err)
	}
	orders, orderSkips, err := loadOrders(writeTempCSV(t, "orders.csv", ordersCSV))
	if err != nil {
		t.Fatalf("load orders: %v", err)
	}
	activities, activitySkips, err := loadActivities(writeTempCSV(t, "activities.csv", activitiesCSV))
	if err != nil {
		t.Fatalf("load activities: %v", err)
	}

	var loadSkips []skipNote
	loadSkips = append(loadSkips, storeSkips...)
	loadSkips = append(loadSkips, orderSkips...)
	loadSkips = append(loadSkips, activitySkips...)
	if len(loadSkips) != 0 {
		t.Fatalf("expected clean load, got %+v", loadSkips)
	}

	asOf := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	report := buildPipelineReport(stores, orders, activities, asOf, 7, loadSkips)

	// Visit task is future-dated, the other two are due. The overdue
	// reorder (June 1) misses the window; the preset June 12 reorder and
	// the derived wellness reorder (May 16 + 28 = June 13) are in it.
	if report.Summary.TasksDue != 2 {
		t.Fatalf("expected 2 tasks due, got %d", report.Summary.TasksDue)
	}
	if report.Summary.ReordersDue != 2 {
		t.Fatalf("expected 2 reorders due, got %d", report.Summary.ReordersDue)
	}

	if len(report.Plan.High) != 2 {
		t.Fatalf("expected 2 high items (both reorders), got %d", len(report.Plan.High))
	}
	for _, item := range report.Plan.High {
		if item.Kind != itemReorder || item.Score != 8 {
			t.Fatalf("unexpected high item: %+v", item)
		}
	}
	if len(report.Plan.Medium) != 2 {
		t.Fatalf("expected 2 medium items, got %d", len(report.Plan.Medium))
	}
	if report.Plan.Medium[0].Store != "ABC Liquor" || report.Plan.Medium[0].Score != 6 {
		t.Fatalf("expected call task at 6, got %+v", report.Plan.Medium[0])
	}
	if report.Plan.Medium[1].Store != "Corner Store" || report.Plan.Medium[1].Score != 5 {
		t.Fatalf("expected overdue email task at 5, got %+v", report.Plan.Medium[1])
	}

	metrics := report.Metrics
	if metrics.NewStoresAdded != 1 || metrics.TotalStores != 3 {
		t.Fatalf("unexpected store metrics: %+v", metrics)
	}
	if metrics.TotalOrders != 3 || metrics.FirstOrders != 2 || metrics.Reorders != 1 {
		t.Fatalf("unexpected order metrics: %+v", metrics)
	}
	if metrics.TotalCases != 10 {
		t.Fatalf("expected 10 cases, got %d", metrics.TotalCases)
	}
	if metrics.StoresContacted != 3 || metrics.StoresConverted != 1 {
		t.Fatalf("unexpected contact metrics: %+v", metrics)
	}
	if !floatEqual(metrics.ConversionRate, 33.33) {
		t.Fatalf("expected conversion ~33.3, got %f", metrics.ConversionRate)
	}

	if len(report.Charts.BrandsChart.Labels) != 2 {
		t.Fatalf("expected 2 brands in chart, got %v", report.Charts.BrandsChart.Labels)
	}
	if report.Summary.SkippedRecords != 0 {
		t.Fatalf("expected no skipped records, got %d", report.Summary.SkippedRecords)
	}
}

func TestWriteTasksCSVMinTier(t *testing.T) {
	asOf := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	tasks := []Activity{
		{StoreName: "ABC Liquor", NextStep: "Close the order", NextStepDate: "2024-06-10"},
		{StoreName: "Corner Store", NextStep: "Call to follow up", NextStepDate: "2024-06-10"},
		{StoreName: "Quiet Mart", NextStep: "Send email", NextStepDate: "2024-06-10"},
	}
	report := buildPipelineReport(nil, nil, nil, asOf, 7, nil)
	report.Plan = prioritize(tasks, nil, asOf)

	path := filepath.Join(t.TempDir(), "tasks.csv")
	if err := writeTasksCSV(report, path, "medium"); err != nil {
		t.Fatalf("write tasks csv: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read tasks csv: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "ABC Liquor") || !strings.Contains(content, "Corner Store") {
		t.Fatalf("high and medium items missing from export:\n%s", content)
	}
	if strings.Contains(content, "Quiet Mart") {
		t.Fatalf("low tier item should be filtered out:\n%s", content)
	}

	if err := writeTasksCSV(report, path, "urgent"); err == nil {
		t.Fatal("expected error for invalid min tier")
	}
}

func floatEqual(a float64, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < 0.01
}
