// Betty Organic - Back-Office Order Notifications and Sales Reports
// Copyright 2026 Yosef Ali
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Yosef-Ali/betty-organic-sub002

// Package report computes sales report metrics from order data. The
// aggregation functions are pure: they take loaded records and a clock
// value and return bucketed series, so every counting rule is testable
// without a database. The Aggregator service drives them on a cadence
// and publishes snapshots for the API.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/Yosef-Ali/betty-organic-sub002/internal/models"
)

// dayLabel formats a daily bucket label.
func dayLabel(t time.Time) string {
	return t.Format("2006-01-02")
}

// weekLabel formats an ISO week bucket label, e.g. "2026-W35".
func weekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// monthLabel formats a monthly bucket label.
func monthLabel(t time.Time) string {
	return t.Format("2006-01")
}

// startOfDay truncates to midnight in t's location.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfWeek truncates to the preceding Monday midnight. Weeks start on
// Monday to match ISO week labels.
func startOfWeek(t time.Time) time.Time {
	day := startOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	return day.AddDate(0, 0, -offset)
}

// startOfMonth truncates to the first of the month.
func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// bucket accumulates one period's totals.
type bucket struct {
	revenue float64
	count   int
}

func (b bucket) stats(label string) models.AggregatedPeriodStats {
	avg := 0.0
	if b.count > 0 {
		avg = b.revenue / float64(b.count)
	}
	return models.AggregatedPeriodStats{
		PeriodLabel:       label,
		Revenue:           b.revenue,
		OrderCount:        b.count,
		AverageOrderValue: avg,
	}
}

// DailySeries buckets sales by calendar day over the trailing window,
// oldest first. Every day appears even with zero orders so charts never
// have gaps. Only orders whose status counts as a sale contribute.
func DailySeries(orders []models.OrderRecord, windowDays int, now time.Time) []models.AggregatedPeriodStats {
	if windowDays < 1 {
		windowDays = 1
	}
	first := startOfDay(now).AddDate(0, 0, -(windowDays - 1))

	buckets := make(map[string]bucket, windowDays)
	for _, o := range orders {
		if !o.Status.CountsAsSale() || o.CreatedAt.Before(first) {
			continue
		}
		label := dayLabel(o.CreatedAt)
		b := buckets[label]
		b.revenue += o.TotalAmount
		b.count++
		buckets[label] = b
	}

	series := make([]models.AggregatedPeriodStats, 0, windowDays)
	for d := 0; d < windowDays; d++ {
		label := dayLabel(first.AddDate(0, 0, d))
		series = append(series, buckets[label].stats(label))
	}
	return series
}

// WeeklySeries buckets sales by ISO week (Monday start) over the
// trailing weeks, oldest first, zero-filled.
func WeeklySeries(orders []models.OrderRecord, weeks int, now time.Time) []models.AggregatedPeriodStats {
	if weeks < 1 {
		weeks = 1
	}
	first := startOfWeek(now).AddDate(0, 0, -7*(weeks-1))

	buckets := make(map[string]bucket, weeks)
	for _, o := range orders {
		if !o.Status.CountsAsSale() || o.CreatedAt.Before(first) {
			continue
		}
		label := weekLabel(o.CreatedAt)
		b := buckets[label]
		b.revenue += o.TotalAmount
		b.count++
		buckets[label] = b
	}

	series := make([]models.AggregatedPeriodStats, 0, weeks)
	for w := 0; w < weeks; w++ {
		label := weekLabel(first.AddDate(0, 0, 7*w))
		series = append(series, buckets[label].stats(label))
	}
	return series
}

// MonthlySeries buckets sales by calendar month over the trailing
// months, oldest first, zero-filled.
func MonthlySeries(orders []models.OrderRecord, months int, now time.Time) []models.AggregatedPeriodStats {
	if months < 1 {
		months = 1
	}
	first := startOfMonth(now).AddDate(0, -(months - 1), 0)

	buckets := make(map[string]bucket, months)
	for _, o := range orders {
		if !o.Status.CountsAsSale() || o.CreatedAt.Before(first) {
			continue
		}
		label := monthLabel(o.CreatedAt)
		b := buckets[label]
		b.revenue += o.TotalAmount
		b.count++
		buckets[label] = b
	}

	series := make([]models.AggregatedPeriodStats, 0, months)
	for m := 0; m < months; m++ {
		label := monthLabel(first.AddDate(0, m, 0))
		series = append(series, buckets[label].stats(label))
	}
	return series
}

// Compare builds the current-vs-prior comparison from the last two
// buckets of a series. Percentage change is defined as exactly 0 when
// the prior period had no revenue, avoiding divide-by-zero spikes on
// sparse data.
func Compare(series []models.AggregatedPeriodStats) models.PeriodComparison {
	var cmp models.PeriodComparison
	if len(series) == 0 {
		return cmp
	}
	cmp.Current = series[len(series)-1]
	if len(series) >= 2 {
		cmp.Prior = series[len(series)-2]
	}
	if cmp.Prior.Revenue != 0 {
		cmp.PercentageChangeVsPrior = (cmp.Current.Revenue - cmp.Prior.Revenue) / cmp.Prior.Revenue * 100
	}
	return cmp
}

// TopProducts ranks products by revenue across line items of orders that
// count as sales. Ties keep first-encountered order so rankings are
// stable across runs over the same data.
func TopProducts(items []models.OrderItemRecord, limit int) []models.TopProduct {
	if limit < 1 {
		limit = 1
	}

	totals := make(map[string]*models.TopProduct)
	order := make([]string, 0)
	for _, it := range items {
		if !it.OrderStatus.CountsAsSale() {
			continue
		}
		tp, ok := totals[it.ProductName]
		if !ok {
			tp = &models.TopProduct{ProductName: it.ProductName}
			totals[it.ProductName] = tp
			order = append(order, it.ProductName)
		}
		tp.TotalQuantity += it.Quantity
		tp.TotalRevenue += it.Price * float64(it.Quantity)
	}

	ranked := make([]models.TopProduct, 0, len(order))
	for _, name := range order {
		ranked = append(ranked, *totals[name])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalRevenue > ranked[j].TotalRevenue
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// Customers summarizes the customer base. Average orders per customer is
// defined as 0 when there are no customers.
func Customers(customers []models.CustomerRecord, orderCounts map[string]int, now time.Time) models.CustomerMetrics {
	metrics := models.CustomerMetrics{
		TotalCustomers: len(customers),
	}
	if len(customers) == 0 {
		return metrics
	}

	monthStart := startOfMonth(now)
	totalOrders := 0
	for _, c := range customers {
		if !c.CreatedAt.Before(monthStart) {
			metrics.NewCustomersThisMonth++
		}
		totalOrders += orderCounts[c.ID]
	}
	metrics.AverageOrdersPerCustomer = float64(totalOrders) / float64(len(customers))
	return metrics
}

// Config holds aggregation window tuning.
type Config struct {
	WindowDays       int
	TopProductsLimit int
	LookbackMonths   int
}

// weeklyWindow derives the weekly series length from the monthly
// lookback so both charts cover a comparable span.
func (c Config) weeklyWindow() int {
	weeks := c.LookbackMonths * 4
	if weeks < 2 {
		weeks = 2
	}
	if weeks > 52 {
		weeks = 52
	}
	return weeks
}

// Build assembles a complete report snapshot from loaded records.
func Build(cfg Config, orders []models.OrderRecord, items []models.OrderItemRecord,
	customers []models.CustomerRecord, orderCounts map[string]int, now time.Time) *models.ReportMetrics {

	daily := DailySeries(orders, cfg.WindowDays, now)
	weekly := WeeklySeries(orders, cfg.weeklyWindow(), now)
	monthly := MonthlySeries(orders, cfg.LookbackMonths, now)

	return &models.ReportMetrics{
		DailySeries:   daily,
		WeeklySeries:  weekly,
		MonthlySeries: monthly,
		TodayStats:    Compare(daily),
		WeekStats:     Compare(weekly),
		MonthStats:    Compare(monthly),
		TopProducts:   TopProducts(items, cfg.TopProductsLimit),
		Customers:     Customers(customers, orderCounts, now),
		GeneratedAt:   now,
	}
}
