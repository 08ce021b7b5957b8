package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultLookaheadDays = 7
	defaultTopN          = 5
)

func main() {
	storesPath := flag.String("stores", "", "Path to stores CSV")
	ordersPath := flag.String("orders", "", "Path to orders CSV")
	activitiesPath := flag.String("activities", "", "Path to activities CSV")
	asOf := flag.String("as-of", "", "Plan as-of date (YYYY-MM-DD); defaults to today")
	lookahead := flag.Int("lookahead", defaultLookaheadDays, "Reorder look-ahead window in days")
	topN := flag.Int("top", defaultTopN, "Items printed per tier")
	jsonOut := flag.String("json", "", "Optional JSON output path")
	tasksOut := flag.String("tasks", "", "Optional CSV output for plan items")
	minTier := flag.String("min-tier", "medium", "Minimum tier for task export (low, medium, high)")
	orderStore := flag.String("order-store", "", "Order intake mode: store name")
	orderBrand := flag.String("order-brand", "", "Order intake mode: brand name")
	orderDate := flag.String("order-date", "", "Order intake mode: order date (YYYY-MM-DD)")
	orderCases := flag.Int("order-cases", 1, "Order intake mode: number of cases")
	orderCategory := flag.String("order-category", "", "Order intake mode: product category")
	orderType := flag.String("order-type", "first", "Order intake mode: first or reorder")
	dbEnabled := flag.Bool("db", false, "Store run in Postgres (requires PIPELINE_AUDIT_DB_URL or DATABASE_URL)")
	dbSchema := flag.String("db-schema", "pipeline_audit", "Postgres schema for pipeline tables")
	dbTag := flag.String("db-tag", "", "Optional label for this run")
	initDB := flag.Bool("init-db", false, "Initialize database schema and seed data if empty")
	flag.Parse()

	if *orderStore != "" {
		runOrderIntake(*orderStore, *orderBrand, *orderDate, *orderCases, *orderCategory, *orderType)
		return
	}

	if *storesPath == "" && *ordersPath == "" && *activitiesPath == "" {
		exitWithError(errors.New("at least one of --stores, --orders, --activities is required"))
	}
	if *lookahead < 0 {
		exitWithError(errors.New("--lookahead must not be negative"))
	}

	asOfDate, err := parseDay(time.Now().Format(dateLayout))
	if err != nil {
		exitWithError(err)
	}
	if *asOf != "" {
		parsed, err := parseDay(*asOf)
		if err != nil {
			exitWithError(fmt.Errorf("invalid --as-of date: %w", err))
		}
		asOfDate = parsed
	}

	var loadSkips []skipNote
	var stores []Store
	var orders []Order
	var activities []Activity

	if *storesPath != "" {
		loaded, skipped, err := loadStores(*storesPath)
		if err != nil {
			exitWithError(err)
		}
		stores = loaded
		loadSkips = append(loadSkips, skipped...)
	}
	if *ordersPath != "" {
		loaded, skipped, err := loadOrders(*ordersPath)
		if err != nil {
			exitWithError(err)
		}
		orders = loaded
		loadSkips = append(loadSkips, skipped...)
	}
	if *activitiesPath != "" {
		loaded, skipped, err := loadActivities(*activitiesPath)
		if err != nil {
			exitWithError(err)
		}
		activities = loaded
		loadSkips = append(loadSkips, skipped...)
	}

	report := buildPipelineReport(stores, orders, activities, asOfDate, *lookahead, loadSkips)

	printReport(report, *topN)

	if *jsonOut != "" {
		if err := writeJSON(report, *jsonOut); err != nil {
			exitWithError(err)
		}
		fmt.Printf("\nJSON report saved to %s\n", *jsonOut)
	}

	if *tasksOut != "" {
		if err := writeTasksCSV(report, *tasksOut, *minTier); err != nil {
			exitWithError(err)
		}
		fmt.Printf("Task CSV saved to %s\n", *tasksOut)
	}

	if *dbEnabled || *initDB {
		_ = godotenv.Load()
		dbURL := dbURLFromEnv()
		if dbURL == "" {
			exitWithError(errors.New("database URL missing; set PIPELINE_AUDIT_DB_URL or DATABASE_URL"))
		}
		cfg := dbConfig{
			URL:    dbURL,
			Schema: *dbSchema,
			Tag:    *dbTag,
		}
		seeded := false
		if *initDB {
			runID, err := seedDatabase(report, cfg)
			if err != nil {
				exitWithError(err)
			}
			if runID != "" {
				seeded = true
				fmt.Printf("\nSeeded Postgres with initial pipeline run (run_id=%s)\n", runID)
			}
		}
		if *dbEnabled {
			if seeded {
				fmt.Println("Skipped duplicate insert; current report already used for seed.")
			} else {
				runID, err := storeReportInDB(report, cfg)
				if err != nil {
					exitWithError(err)
				}
				fmt.Printf("\nStored pipeline run in Postgres (run_id=%s)\n", runID)
			}
		}
	}
}

func runOrderIntake(store string, brand string, date string, cases int, category string, orderType string) {
	if date == "" {
		date = time.Now().Format(dateLayout)
	}
	order := Order{
		StoreName: store,
		BrandName: brand,
		Category:  category,
		OrderDate: date,
		Cases:     strconv.Itoa(cases),
		OrderType: orderType,
	}

	intake, err := processOrder(order)
	if err != nil {
		exitWithError(err)
	}

	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("REORDER TASK")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Subject: %s\n", intake.ReorderTask.Subject)
	fmt.Printf("Due Date: %s\n", intake.ReorderTask.DueDate)
	fmt.Printf("Priority: %s\n", intake.ReorderTask.Priority)
	fmt.Printf("\nNotes:\n%s\n", intake.ReorderTask.Notes)

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("ACTIVITY LOG")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Type: %s | Outcome: %s\n", intake.ActivityLog.ActivityType, intake.ActivityLog.Outcome)
	fmt.Printf("Next Step: %s (%s)\n", intake.ActivityLog.NextStep, intake.ActivityLog.NextStepDate)

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("NEXT STEPS")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Next Reorder Date: %s\n", intake.Order.NextReorderDate)
	fmt.Printf("Store Status: %s\n", intake.NextStoreStatus)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}
