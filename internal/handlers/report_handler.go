package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go-pharma-pos/internal/database"
	"go-pharma-pos/internal/models"

	"github.com/gin-gonic/gin"
)

// ReportLine is one labeled amount inside a report section.
type ReportLine struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// ReportSection groups detail lines with their total.
type ReportSection struct {
	Details []ReportLine `json:"details"`
	Total   float64      `json:"total"`
}

// --- GET: /api/dashboard ---
// Lowest-stock products, last-4-weeks revenue, outlet rosters and the
// cashier list, all recomputed per request.
func GetDashboard(c *gin.Context) {
	lowStock, err := database.LowestStockProducts(5)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch dashboard data"})
		return
	}

	type stockRec struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	recs := make([]stockRec, 0, len(lowStock))
	for _, p := range lowStock {
		recs = append(recs, stockRec{Name: p.Name, Count: p.Stock})
	}

	// Revenue bucketed into the last four whole weeks, oldest first
	type earning struct {
		Name  string  `json:"name"`
		Value float64 `json:"value"`
	}
	earnings := make([]earning, 0, 4)
	now := time.Now()
	for i := 3; i >= 0; i-- {
		end := now.AddDate(0, 0, -7*i)
		start := end.AddDate(0, 0, -7)
		total, err := database.SalesTotal(start, end)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch dashboard data"})
			return
		}
		earnings = append(earnings, earning{Name: fmt.Sprintf("Week %d", 4-i), Value: total})
	}

	cashiers, err := database.CashierRoster()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch dashboard data"})
		return
	}

	var outlets []models.Outlet
	if err := database.DB.Order("id").Find(&outlets).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch dashboard data"})
		return
	}

	type outletRoster struct {
		ID       uint     `json:"id"`
		Name     string   `json:"name"`
		Location string   `json:"location"`
		Cashiers []string `json:"cashiers"`
	}
	rosters := make([]outletRoster, 0, len(outlets))
	for _, o := range outlets {
		roster := outletRoster{ID: o.ID, Name: o.Name, Location: o.Location, Cashiers: []string{}}
		for _, cashier := range cashiers {
			if cashier.OutletID != nil && *cashier.OutletID == o.ID {
				roster.Cashiers = append(roster.Cashiers, cashier.Username)
			}
		}
		rosters = append(rosters, roster)
	}

	c.JSON(http.StatusOK, gin.H{
		"stockRecommendations": recs,
		"earnings":             earnings,
		"outlets":              rosters,
		"cashiers":             cashiers,
	})
}

// --- GET: /api/financial/profit-loss?month=&year= ---
// Revenue minus COGS for the month; opname losses are carried as an
// extra cost, opname gains as a credit. "Other expenses" is a fixed
// placeholder: there is no expense ledger in this system.
func GetProfitLoss(c *gin.Context) {
	month, err1 := strconv.Atoi(c.Query("month"))
	year, err2 := strconv.Atoi(c.Query("year"))
	if err1 != nil || err2 != nil || month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "month and year are required"})
		return
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, 0).Add(-time.Second)

	revenue, err := database.SalesTotal(start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to compute profit/loss"})
		return
	}
	cogs, err := database.CostOfGoodsSold(start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to compute profit/loss"})
		return
	}
	variance, err := database.OpnameVariance(start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to compute profit/loss"})
		return
	}

	totalCOGS := cogs + variance
	grossProfit := revenue - totalCOGS
	netProfit := grossProfit // no expense ledger to subtract

	c.JSON(http.StatusOK, gin.H{
		"revenue": ReportSection{
			Details: []ReportLine{{Label: "Penjualan", Amount: revenue}},
			Total:   revenue,
		},
		"cogs": ReportSection{
			Details: []ReportLine{
				{Label: "Harga Pokok Penjualan", Amount: cogs},
				{Label: "Selisih Stock Opname", Amount: variance},
			},
			Total: totalCOGS,
		},
		"gross_profit": grossProfit,
		"expenses": ReportSection{
			Details: []ReportLine{{Label: "Beban Lainnya", Amount: 0}},
			Total:   0,
		},
		"net_profit": netProfit,
	})
}

// --- GET: /api/reports/balance ---
// A snapshot, not a historical statement: cash is all-time transaction
// revenue, inventory is current stock at cost, and the equity figures
// are back-solved so Assets = Liabilities + Equity always holds.
func GetBalanceSheet(c *gin.Context) {
	cash, err := database.AllTimeSalesTotal()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to compute balance sheet"})
		return
	}
	inventory, err := database.InventoryValuation()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to compute balance sheet"})
		return
	}
	cogs, err := database.AllTimeCostOfGoodsSold()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to compute balance sheet"})
		return
	}

	totalAssets := cash + inventory
	totalLiabilities := 0.0
	totalEquity := totalAssets - totalLiabilities
	retainedEarnings := cash - cogs
	initialEquity := totalEquity - retainedEarnings

	c.JSON(http.StatusOK, gin.H{
		"assets": gin.H{
			"cash":        cash,
			"inventory":   inventory,
			"receivables": 0,
			"total":       totalAssets,
		},
		"liabilities": gin.H{
			"payables":        0,
			"consignmentDebt": 0,
			"total":           totalLiabilities,
		},
		"equity": gin.H{
			"initial":          initialEquity,
			"capitalChanges":   0,
			"retainedEarnings": retainedEarnings,
			"total":            totalEquity,
		},
	})
}

// --- GET: /api/reports/transactions?startDate=&endDate= ---
func GetTransactionReport(c *gin.Context) {
	start, end, ok := parseDateRange(c.Query("startDate"), c.Query("endDate"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "startDate and endDate are required (YYYY-MM-DD)"})
		return
	}

	var transactions []models.Transaction
	err := database.DB.Preload("Items").
		Where("transaction_date BETWEEN ? AND ?", start, end).
		Order("transaction_date desc").
		Find(&transactions).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch transaction report"})
		return
	}

	chartData, err := database.DailySales(start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch transaction report"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": transactions,
		"chartData":    chartData,
	})
}
