package database

import (
	"time"

	"go-pharma-pos/internal/models"
)

// Read-only aggregates backing the dashboard and financial reports.
// Everything here is recomputed per request straight from the tables;
// there is no caching layer to invalidate.

// SalesTotal sums transaction revenue within a date range.
// COALESCE ensures we get 0 instead of NULL if no sales exist.
func SalesTotal(start, end time.Time) (float64, error) {
	var total float64
	err := DB.Model(&models.Transaction{}).
		Where("transaction_date BETWEEN ? AND ?", start, end).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&total).Error
	return total, err
}

// AllTimeSalesTotal sums every transaction ever recorded.
func AllTimeSalesTotal() (float64, error) {
	var total float64
	err := DB.Model(&models.Transaction{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&total).Error
	return total, err
}

// CostOfGoodsSold joins sold quantities against current product cost
// prices for the period.
func CostOfGoodsSold(start, end time.Time) (float64, error) {
	var total float64
	err := DB.Table("transaction_items").
		Select("COALESCE(SUM(transaction_items.quantity * products.cost_price), 0)").
		Joins("JOIN transactions ON transactions.id = transaction_items.transaction_id").
		Joins("JOIN products ON products.id = transaction_items.product_id").
		Where("transactions.transaction_date BETWEEN ? AND ?", start, end).
		Scan(&total).Error
	return total, err
}

// AllTimeCostOfGoodsSold is CostOfGoodsSold without a period bound.
func AllTimeCostOfGoodsSold() (float64, error) {
	var total float64
	err := DB.Table("transaction_items").
		Select("COALESCE(SUM(transaction_items.quantity * products.cost_price), 0)").
		Joins("JOIN products ON products.id = transaction_items.product_id").
		Scan(&total).Error
	return total, err
}

// OpnameVariance values the opname corrections of the period at cost.
// A stock loss (negative quantity change) comes back positive: it is an
// extra cost on top of COGS. A counted gain reduces it.
func OpnameVariance(start, end time.Time) (float64, error) {
	var total float64
	err := DB.Table("inventory_histories").
		Select("COALESCE(SUM(-inventory_histories.quantity_change * products.cost_price), 0)").
		Joins("JOIN products ON products.id = inventory_histories.product_id").
		Where("inventory_histories.type = ? AND inventory_histories.created_at BETWEEN ? AND ?",
			models.HistoryOpname, start, end).
		Scan(&total).Error
	return total, err
}

// InventoryValuation prices all current stock at cost.
func InventoryValuation() (float64, error) {
	var total float64
	err := DB.Model(&models.Product{}).
		Select("COALESCE(SUM(stock * cost_price), 0)").
		Scan(&total).Error
	return total, err
}

// LowestStockProducts returns the n products closest to running out.
func LowestStockProducts(n int) ([]models.Product, error) {
	var products []models.Product
	err := DB.Order("stock asc").Limit(n).Find(&products).Error
	return products, err
}

// DailyTotal is one point on the transaction report chart.
type DailyTotal struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}

// DailySales buckets revenue per calendar day for the chart.
func DailySales(start, end time.Time) ([]DailyTotal, error) {
	var rows []DailyTotal
	err := DB.Model(&models.Transaction{}).
		Select("DATE(transaction_date) as date, COALESCE(SUM(total_amount), 0) as total").
		Where("transaction_date BETWEEN ? AND ?", start, end).
		Group("DATE(transaction_date)").
		Order("date").
		Scan(&rows).Error
	return rows, err
}

// CashierInfo is a dashboard roster entry.
type CashierInfo struct {
	ID         uint    `json:"id"`
	Username   string  `json:"username"`
	OutletID   *uint   `json:"-"`
	OutletName *string `json:"outlet_name"`
}

// CashierRoster lists every active cashier account with its outlet.
func CashierRoster() ([]CashierInfo, error) {
	var cashiers []CashierInfo
	err := DB.Model(&models.User{}).
		Select("users.id, users.username, users.outlet_id, outlets.name as outlet_name").
		Joins("LEFT JOIN outlets ON outlets.id = users.outlet_id").
		Where("users.role = ? AND users.status = ?", "cashier", "active").
		Order("users.id").
		Scan(&cashiers).Error
	return cashiers, err
}
