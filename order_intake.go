package main

import (
	"fmt"
	"strings"
)

const (
	statusCustomer       = "customer"
	statusActiveCustomer = "active_customer"
)

// followUpTask is the reorder check-in reminder emitted for a processed
// order.
type followUpTask struct {
	Subject  string `json:"subject"`
	DueDate  string `json:"due_date"`
	Priority string `json:"priority"`
	Type     string `json:"type"`
	Notes    string `json:"notes"`
}

// orderIntake is everything the order workflow derives from one logged
// order. The store record itself is updated by the surrounding workflow;
// NextStoreStatus is only a recommendation.
type orderIntake struct {
	Order           Order        `json:"order"`
	ReorderTask     followUpTask `json:"reorder_task"`
	ActivityLog     Activity     `json:"activity_log"`
	NextStoreStatus string       `json:"next_store_status"`
}

// processOrder runs the order intake workflow: fill in a missing reorder
// date, build the reorder reminder task and the activity log entry, and
// recommend the next store status. A scheduler failure propagates to the
// caller; the batch step decides whether to skip the order.
func processOrder(order Order) (orderIntake, error) {
	if order.NextReorderDate == "" {
		computed, err := computeReorderDate(order.OrderDate, order.Category, parseCases(order.Cases))
		if err != nil {
			return orderIntake{}, fmt.Errorf("order for %s: %w", storeRef(order.StoreID, order.StoreName), err)
		}
		order.NextReorderDate = computed
	}

	orderType := strings.ToLower(strings.TrimSpace(order.OrderType))
	if orderType == "" {
		orderType = "first"
	}
	isFirstOrder := orderType == "first"

	storeName := order.StoreName
	if storeName == "" {
		storeName = "Store"
	}
	brandName := order.BrandName
	if brandName == "" {
		brandName = "Brand"
	}

	task := followUpTask{
		Subject:  fmt.Sprintf("Reorder Check: %s - %s", storeName, brandName),
		DueDate:  order.NextReorderDate,
		Priority: "MEDIUM",
		Type:     "TODO",
		Notes: fmt.Sprintf(
			"Time to check in on reorder for %s.\n\n"+
				"Last Order Details:\n"+
				"- Date: %s\n"+
				"- Product: %s\n"+
				"- Quantity: %s cases\n\n"+
				"Action Items:\n"+
				"1. Call or visit the store\n"+
				"2. Ask how the products are selling\n"+
				"3. Check current inventory levels\n"+
				"4. Suggest reorder quantity",
			storeName, order.OrderDate, brandName, order.Cases,
		),
	}

	activity := Activity{
		StoreID:      order.StoreID,
		StoreName:    order.StoreName,
		ActivityType: "order",
		Date:         order.OrderDate,
		Outcome:      "ordered",
		NextStep:     "Check in for reorder",
		NextStepDate: order.NextReorderDate,
		Notes:        fmt.Sprintf("Order placed: %s - %s cases", order.BrandName, order.Cases),
	}

	status := statusActiveCustomer
	if isFirstOrder {
		status = statusCustomer
	}

	return orderIntake{
		Order:           order,
		ReorderTask:     task,
		ActivityLog:     activity,
		NextStoreStatus: status,
	}, nil
}
