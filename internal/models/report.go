// Betty Organic - Back-Office Order Notifications and Sales Reports
// Copyright 2026 Yosef Ali
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Yosef-Ali/betty-organic-sub002

package models

import (
	"time"
)

// AggregatedPeriodStats is one bucket of a time-bucketed sales series.
//
// Invariant: AverageOrderValue * OrderCount approximates Revenue within
// floating-point tolerance; a period with zero orders still appears with
// all-zero values so series never have gaps.
type AggregatedPeriodStats struct {
	// PeriodLabel is the formatted bucket label: "2026-08-27" for days,
	// "2026-W35" for ISO weeks (Monday start), "2026-08" for months.
	PeriodLabel       string  `json:"period_label"`
	Revenue           float64 `json:"revenue"`
	OrderCount        int     `json:"order_count"`
	AverageOrderValue float64 `json:"average_order_value"`
}

// PeriodComparison holds current-vs-immediately-prior window stats for the
// percentage-change display on the dashboard.
type PeriodComparison struct {
	Current AggregatedPeriodStats `json:"current"`
	Prior   AggregatedPeriodStats `json:"prior"`
	// PercentageChangeVsPrior is (current-prior)/prior*100, defined as
	// exactly 0 when prior revenue is 0.
	PercentageChangeVsPrior float64 `json:"percentage_change_vs_prior"`
}

// TopProduct is one row of the top-products-by-revenue report.
type TopProduct struct {
	ProductName   string  `json:"product_name"`
	TotalQuantity int     `json:"total_quantity"`
	TotalRevenue  float64 `json:"total_revenue"`
}

// CustomerMetrics summarizes the customer base for the dashboard.
type CustomerMetrics struct {
	TotalCustomers           int     `json:"total_customers"`
	NewCustomersThisMonth    int     `json:"new_customers_this_month"`
	AverageOrdersPerCustomer float64 `json:"average_orders_per_customer"`
}

// ReportMetrics is the single snapshot object consumed by report presentation.
// It is replaced wholesale on each aggregation run, never partially updated,
// so readers need no defensive nil checks: a failed run leaves the previous
// snapshot in place and flags the error separately.
type ReportMetrics struct {
	DailySeries   []AggregatedPeriodStats `json:"daily_series"`
	WeeklySeries  []AggregatedPeriodStats `json:"weekly_series"`
	MonthlySeries []AggregatedPeriodStats `json:"monthly_series"`
	TodayStats    PeriodComparison        `json:"today_stats"`
	WeekStats     PeriodComparison        `json:"week_stats"`
	MonthStats    PeriodComparison        `json:"month_stats"`
	TopProducts   []TopProduct            `json:"top_products"`
	Customers     CustomerMetrics         `json:"customer_metrics"`
	// GeneratedAt is the aggregation run timestamp; zero when no run has
	// completed yet.
	GeneratedAt time.Time `json:"generated_at"`
	// Stale is true when the most recent aggregation attempt failed and this
	// snapshot is last-known-good data.
	Stale bool `json:"stale,omitempty"`
}

// EmptyReportMetrics returns a zero-valued but fully populated snapshot so
// presentation code can render before the first aggregation run completes.
func EmptyReportMetrics(windowDays int) *ReportMetrics {
	return &ReportMetrics{
		DailySeries:   make([]AggregatedPeriodStats, 0, windowDays),
		WeeklySeries:  []AggregatedPeriodStats{},
		MonthlySeries: []AggregatedPeriodStats{},
		TopProducts:   []TopProduct{},
	}
}
