package main

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type itemKind string

const (
	itemTask    itemKind = "task"
	itemReorder itemKind = "reorder"
)

// prioritizedItem is one line of the daily plan, scored 1-10.
type prioritizedItem struct {
	Kind   itemKind `json:"type"`
	Store  string   `json:"store"`
	Brand  string   `json:"brand,omitempty"`
	Action string   `json:"action"`
	Due    string   `json:"date"`
	Notes  string   `json:"notes"`
	Score  int      `json:"priority_score"`
}

// prioritized buckets the scored plan into coarse tiers. Within a tier items
// keep score-descending order with task-before-reorder tie order.
type prioritized struct {
	High   []prioritizedItem `json:"high_priority"`
	Medium []prioritizedItem `json:"medium_priority"`
	Low    []prioritizedItem `json:"low_priority"`
}

func (p prioritized) total() int {
	return len(p.High) + len(p.Medium) + len(p.Low)
}

// pendingReorder is an order due for a reorder check-in. Derived marks a due
// date the scheduler computed because the record carried none.
type pendingReorder struct {
	Order
	Due     string
	Derived bool
}

// actionRules is the task scoring cascade. First match wins, so the order of
// entries is part of the policy: closing beats visiting beats calling.
var actionRules = []struct {
	keywords []string
	score    int
}{
	{keywords: []string{"order", "close"}, score: 9},
	{keywords: []string{"visit", "demo"}, score: 7},
	{keywords: []string{"call"}, score: 6},
	{keywords: []string{"email"}, score: 4},
}

// scorePriority computes the urgency score for one plan item. Reorders score
// 8, or 10 once overdue; overdue reorders outrank every task path. Tasks
// score by action keyword, then gain a point per day overdue, capped at 10.
// An unparseable due date means "not overdue", never an error.
func scorePriority(action string, due string, isReorder bool, today time.Time) int {
	dueDay, dueErr := parseDay(due)

	if isReorder {
		if dueErr == nil && dueDay.Before(today) {
			return 10
		}
		return 8
	}

	score := 5
	lowered := strings.ToLower(action)
	for _, rule := range actionRules {
		matched := false
		for _, keyword := range rule.keywords {
			if strings.Contains(lowered, keyword) {
				matched = true
				break
			}
		}
		if matched {
			score = rule.score
			break
		}
	}

	if dueErr == nil && dueDay.Before(today) {
		score += daysBetween(today, dueDay)
		if score > 10 {
			score = 10
		}
	}
	return score
}

// dueTasks keeps activities whose next-step date is on or before today.
// Activities without a next step date are not tasks; a malformed date is
// skip-noted and dropped rather than failing the batch.
func dueTasks(activities []Activity, today time.Time) ([]Activity, []skipNote) {
	var tasks []Activity
	var skipped []skipNote
	for _, activity := range activities {
		if activity.NextStepDate == "" {
			continue
		}
		dueDay, err := parseDay(activity.NextStepDate)
		if err != nil {
			skipped = append(skipped, skipNote{
				Source: "tasks",
				Ref:    storeRef(activity.StoreID, activity.StoreName),
				Reason: fmt.Sprintf("unparseable next step date %q", activity.NextStepDate),
			})
			continue
		}
		if dueDay.After(today) {
			continue
		}
		tasks = append(tasks, activity)
	}
	return tasks, skipped
}

// dueReorders keeps orders whose reorder date falls inside the look-ahead
// window [today, today+lookaheadDays], endpoints inclusive. Orders without a
// preset date get one from the scheduler; a scheduler failure skips that one
// order and the batch continues.
func dueReorders(orders []Order, today time.Time, lookaheadDays int) ([]pendingReorder, []skipNote) {
	windowEnd := today.AddDate(0, 0, lookaheadDays)

	var reorders []pendingReorder
	var skipped []skipNote
	for _, order := range orders {
		due := order.NextReorderDate
		derived := false
		if due == "" {
			computed, err := computeReorderDate(order.OrderDate, order.Category, parseCases(order.Cases))
			if err != nil {
				skipped = append(skipped, skipNote{
					Source: "reorders",
					Ref:    storeRef(order.StoreID, order.StoreName),
					Reason: fmt.Sprintf("cannot compute reorder date: %v", err),
				})
				continue
			}
			due = computed
			derived = true
		}

		dueDay, err := parseDay(due)
		if err != nil {
			skipped = append(skipped, skipNote{
				Source: "reorders",
				Ref:    storeRef(order.StoreID, order.StoreName),
				Reason: fmt.Sprintf("unparseable reorder date %q", due),
			})
			continue
		}
		if dueDay.Before(today) || dueDay.After(windowEnd) {
			continue
		}
		reorders = append(reorders, pendingReorder{Order: order, Due: due, Derived: derived})
	}
	return reorders, skipped
}

// prioritize scores the surviving tasks and reorders and buckets them into
// tiers. The sort must be stable: ties keep merge order, tasks first.
func prioritize(tasks []Activity, reorders []pendingReorder, today time.Time) prioritized {
	items := make([]prioritizedItem, 0, len(tasks)+len(reorders))

	for _, task := range tasks {
		store := task.StoreName
		if store == "" {
			store = task.StoreID
		}
		if store == "" {
			store = "Unknown"
		}
		action := task.NextStep
		if action == "" {
			action = "Follow up"
		}
		items = append(items, prioritizedItem{
			Kind:   itemTask,
			Store:  store,
			Action: action,
			Due:    task.NextStepDate,
			Notes:  task.Notes,
			Score:  scorePriority(action, task.NextStepDate, false, today),
		})
	}

	for _, reorder := range reorders {
		store := reorder.StoreName
		if store == "" {
			store = reorder.StoreID
		}
		if store == "" {
			store = "Unknown"
		}
		items = append(items, prioritizedItem{
			Kind:   itemReorder,
			Store:  store,
			Brand:  reorder.BrandName,
			Action: "Reorder check-in",
			Due:    reorder.Due,
			Notes:  fmt.Sprintf("Last order: %s - %s cases", reorder.OrderDate, reorder.Cases),
			Score:  scorePriority("", reorder.Due, true, today),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})

	var result prioritized
	for _, item := range items {
		switch tierForScore(item.Score) {
		case "high":
			result.High = append(result.High, item)
		case "medium":
			result.Medium = append(result.Medium, item)
		default:
			result.Low = append(result.Low, item)
		}
	}
	return result
}

func tierForScore(score int) string {
	switch {
	case score >= 8:
		return "high"
	case score >= 5:
		return "medium"
	default:
		return "low"
	}
}

func tierRank(value string) (int, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "low":
		return 0, true
	case "medium":
		return 1, true
	case "high":
		return 2, true
	default:
		return 0, false
	}
}
