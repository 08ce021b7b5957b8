package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

type reportSummary struct {
	AsOf           string `json:"as_of"`
	LookaheadDays  int    `json:"lookahead_days"`
	TasksDue       int    `json:"tasks_due"`
	ReordersDue    int    `json:"reorders_due"`
	HighCount      int    `json:"high_count"`
	MediumCount    int    `json:"medium_count"`
	LowCount       int    `json:"low_count"`
	SkippedRecords int    `json:"skipped_records"`
}

// pipelineReport is the full batch output: the daily plan, the metrics
// snapshot with chart payloads, and the records the run had to skip.
type pipelineReport struct {
	Summary reportSummary   `json:"summary"`
	Plan    prioritized     `json:"plan"`
	Metrics metricsSnapshot `json:"metrics"`
	Charts  chartData       `json:"charts"`
	Skipped []skipNote      `json:"skipped,omitempty"`
}

// buildPipelineReport runs one full pass over a record snapshot: filter and
// score the plan, aggregate metrics, and collect skip notes from every soft
// failure along the way.
func buildPipelineReport(stores []Store, orders []Order, activities []Activity, asOf time.Time, lookaheadDays int, loadSkips []skipNote) pipelineReport {
	tasks, taskSkips := dueTasks(activities, asOf)
	reorders, reorderSkips := dueReorders(orders, asOf, lookaheadDays)
	plan := prioritize(tasks, reorders, asOf)

	metrics := aggregateMetrics(stores, orders, activities)

	skipped := make([]skipNote, 0, len(loadSkips)+len(taskSkips)+len(reorderSkips))
	skipped = append(skipped, loadSkips...)
	skipped = append(skipped, taskSkips...)
	skipped = append(skipped, reorderSkips...)

	return pipelineReport{
		Summary: reportSummary{
			AsOf:           formatDay(asOf),
			LookaheadDays:  lookaheadDays,
			TasksDue:       len(tasks),
			ReordersDue:    len(reorders),
			HighCount:      len(plan.High),
			MediumCount:    len(plan.Medium),
			LowCount:       len(plan.Low),
			SkippedRecords: len(skipped),
		},
		Plan:    plan,
		Metrics: metrics,
		Charts:  buildChartData(metrics),
		Skipped: skipped,
	}
}

func printReport(report pipelineReport, topN int) {
	fmt.Println("Retail Pipeline Audit")
	fmt.Println(strings.Repeat("=", 38))
	fmt.Printf("As of: %s\n", report.Summary.AsOf)
	fmt.Printf("Reorder look-ahead: %d days\n", report.Summary.LookaheadDays)
	fmt.Printf("Tasks due: %d | Reorders due: %d\n", report.Summary.TasksDue, report.Summary.ReordersDue)
	fmt.Printf("High: %d | Medium: %d | Low: %d\n", report.Summary.HighCount, report.Summary.MediumCount, report.Summary.LowCount)
	if report.Summary.SkippedRecords > 0 {
		fmt.Printf("Records skipped: %d\n", report.Summary.SkippedRecords)
	}

	printTier("High priority", report.Plan.High, topN, true)
	printTier("Medium priority", report.Plan.Medium, topN, false)
	if len(report.Plan.Low) > 0 {
		fmt.Printf("\nLow priority: %d additional tasks\n", len(report.Plan.Low))
	}

	metrics := report.Metrics
	fmt.Println("\nPipeline metrics")
	fmt.Println(strings.Repeat("-", 38))
	fmt.Printf("New stores added: %d (of %d total)\n", metrics.NewStoresAdded, metrics.TotalStores)
	fmt.Printf("Orders: %d (%d first, %d reorders) | %d cases\n", metrics.TotalOrders, metrics.FirstOrders, metrics.Reorders, metrics.TotalCases)
	fmt.Printf("Activities: %d (%d calls, %d visits, %d emails)\n", metrics.TotalActivities, metrics.CallsMade, metrics.VisitsMade, metrics.EmailsSent)
	fmt.Printf("Contacted %d stores, converted %d (%.1f%%)\n", metrics.StoresContacted, metrics.StoresConverted, metrics.ConversionRate)

	if len(metrics.OrdersByBrand) > 0 {
		fmt.Println("\nOrders by brand")
		fmt.Println(strings.Repeat("-", 38))
		for _, brand := range sortedBrands(metrics.OrdersByBrand) {
			fmt.Printf("%s: %d\n", brand, metrics.OrdersByBrand[brand])
		}
	}

	if len(report.Skipped) > 0 {
		fmt.Println("\nSkipped records")
		fmt.Println(strings.Repeat("-", 38))
		for _, note := range report.Skipped {
			fmt.Printf("%s | %s | %s\n", note.Source, note.Ref, note.Reason)
		}
	}
}

func printTier(title string, items []prioritizedItem, topN int, withNotes bool) {
	if len(items) == 0 {
		return
	}
	fmt.Printf("\n%s\n", title)
	fmt.Println(strings.Repeat("-", 38))
	shown := items
	if topN > 0 && len(shown) > topN {
		shown = shown[:topN]
	}
	for idx, item := range shown {
		fmt.Printf("%d. %s - %s (%s, score %d, due %s)\n", idx+1, item.Store, item.Action, item.Kind, item.Score, item.Due)
		if withNotes && item.Notes != "" {
			fmt.Printf("   %s\n", truncate(item.Notes, 100))
		}
	}
	if len(items) > len(shown) {
		fmt.Printf("... and %d more\n", len(items)-len(shown))
	}
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return value[:limit]
}

func writeJSON(report pipelineReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// writeTasksCSV exports plan items at or above minTier for hand-off to the
// rep's task tracker.
func writeTasksCSV(report pipelineReport, path string, minTier string) error {
	threshold, ok := tierRank(minTier)
	if !ok {
		return fmt.Errorf("invalid --min-tier value: %s", minTier)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{
		"store",
		"brand",
		"type",
		"action",
		"due_date",
		"priority_score",
		"tier",
		"notes",
	}); err != nil {
		return err
	}

	for _, item := range planItems(report.Plan) {
		tier := tierForScore(item.Score)
		rank, _ := tierRank(tier)
		if rank < threshold {
			continue
		}
		record := []string{
			item.Store,
			item.Brand,
			string(item.Kind),
			item.Action,
			item.Due,
			fmt.Sprintf("%d", item.Score),
			tier,
			item.Notes,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func planItems(plan prioritized) []prioritizedItem {
	items := make([]prioritizedItem, 0, plan.total())
	items = append(items, plan.High...)
	items = append(items, plan.Medium...)
	items = append(items, plan.Low...)
	return items
}
