package main

import "sort"

// metricsSnapshot is the rolling-window reduction of stores, orders, and
// activities that feeds the weekly report.
type metricsSnapshot struct {
	NewStoresAdded  int            `json:"new_stores_added"`
	TotalStores     int            `json:"total_stores"`
	TotalOrders     int            `json:"total_orders"`
	FirstOrders     int            `json:"first_orders"`
	Reorders        int            `json:"reorders"`
	TotalCases      int            `json:"total_cases"`
	OrdersByBrand   map[string]int `json:"orders_by_brand"`
	TotalActivities int            `json:"total_activities"`
	CallsMade       int            `json:"calls_made"`
	VisitsMade      int            `json:"visits_made"`
	EmailsSent      int            `json:"emails_sent"`
	StoresContacted int            `json:"stores_contacted"`
	StoresConverted int            `json:"stores_converted"`
	ConversionRate  float64        `json:"conversion_rate"`
}

// aggregateMetrics reduces one snapshot of records into pipeline metrics.
// Single pass per input list, inputs untouched, input order irrelevant.
// Dirty rows degrade instead of failing: a non-numeric case count is 0 and a
// missing brand is grouped under "Unknown".
func aggregateMetrics(stores []Store, orders []Order, activities []Activity) metricsSnapshot {
	metrics := metricsSnapshot{
		TotalStores:     len(stores),
		TotalOrders:     len(orders),
		TotalActivities: len(activities),
		OrdersByBrand:   map[string]int{},
	}

	for _, store := range stores {
		if store.Status == "new" {
			metrics.NewStoresAdded++
		}
	}

	for _, order := range orders {
		if order.OrderType == "first" {
			metrics.FirstOrders++
		} else {
			metrics.Reorders++
		}

		if cases := parseCases(order.Cases); cases > 0 {
			metrics.TotalCases += cases
		}

		brand := order.BrandName
		if brand == "" {
			brand = "Unknown"
		}
		metrics.OrdersByBrand[brand]++
	}

	contacted := map[string]bool{}
	converted := map[string]bool{}
	for _, activity := range activities {
		switch activity.ActivityType {
		case "call":
			metrics.CallsMade++
		case "visit":
			metrics.VisitsMade++
		case "email":
			metrics.EmailsSent++
		}

		ref := storeRef(activity.StoreID, activity.StoreName)
		if ref == "" {
			continue
		}
		contacted[ref] = true
		if activity.Outcome == "ordered" {
			converted[ref] = true
		}
	}
	metrics.StoresContacted = len(contacted)
	metrics.StoresConverted = len(converted)

	// Conversion rate is derived last, after both sets are complete.
	if metrics.StoresContacted > 0 {
		metrics.ConversionRate = float64(metrics.StoresConverted) / float64(metrics.StoresContacted) * 100
	}

	return metrics
}

// chartSeries is one label/value pairing handed to the report formatter.
type chartSeries struct {
	Labels []string `json:"labels"`
	Data   []int    `json:"data"`
}

type chartData struct {
	OrdersChart      chartSeries `json:"orders_chart"`
	ActivityChart    chartSeries `json:"activity_chart"`
	BrandsChart      chartSeries `json:"brands_chart"`
	ConversionFunnel chartSeries `json:"conversion_funnel"`
}

// buildChartData flattens the snapshot into chart payloads. Brands are
// ordered by count descending, then name, so output is deterministic.
func buildChartData(metrics metricsSnapshot) chartData {
	brands := sortedBrands(metrics.OrdersByBrand)
	brandCounts := make([]int, 0, len(brands))
	for _, brand := range brands {
		brandCounts = append(brandCounts, metrics.OrdersByBrand[brand])
	}

	return chartData{
		OrdersChart: chartSeries{
			Labels: []string{"First Orders", "Reorders"},
			Data:   []int{metrics.FirstOrders, metrics.Reorders},
		},
		ActivityChart: chartSeries{
			Labels: []string{"Calls", "Visits", "Emails"},
			Data:   []int{metrics.CallsMade, metrics.VisitsMade, metrics.EmailsSent},
		},
		BrandsChart: chartSeries{
			Labels: brands,
			Data:   brandCounts,
		},
		ConversionFunnel: chartSeries{
			Labels: []string{"Contacted", "Converted"},
			Data:   []int{metrics.StoresContacted, metrics.StoresConverted},
		},
	}
}

func sortedBrands(ordersByBrand map[string]int) []string {
	brands := make([]string, 0, len(ordersByBrand))
	for brand := range ordersByBrand {
		brands = append(brands, brand)
	}
	sort.Slice(brands, func(i, j int) bool {
		if ordersByBrand[brands[i]] != ordersByBrand[brands[j]] {
			return ordersByBrand[brands[i]] > ordersByBrand[brands[j]]
		}
		return brands[i] < brands[j]
	})
	return brands
}
