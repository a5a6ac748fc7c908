package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"tickettrack_backend/internal/models"
	"tickettrack_backend/internal/repositories"
)

var sixty = decimal.NewFromInt(60)

// --- DTOs ---

// ReportTotals is the headline metrics block of the activity report.
type ReportTotals struct {
	TicketsTotal         int    `json:"tickets_total"`
	TicketsOpen          int    `json:"tickets_open"`
	TicketsCompleted     int    `json:"tickets_completed"`
	TicketsSent          int    `json:"tickets_sent"`
	TimeTicketCount      int    `json:"time_ticket_count"`
	HardwareTicketCount  int    `json:"hardware_ticket_count"`
	HardwareUnitsSold    int    `json:"hardware_units_sold"`
	BillableMinutes      int    `json:"billable_minutes"`
	BillableHours        string `json:"billable_hours"`
	RevenueTime          string `json:"revenue_time"`
	RevenueHardware      string `json:"revenue_hardware"`
	RevenueTotal         string `json:"revenue_total"`
	AvgRevenuePerTicket  string `json:"average_revenue_per_ticket"`
	AvgHoursPerTicket    string `json:"average_hours_per_time_ticket"`
	UnsentRevenue        string `json:"unsent_revenue"`
	UnsentTimeRevenue    string `json:"unsent_time_revenue"`
	UnsentHardwareRev    string `json:"unsent_hardware_revenue"`
	UnsentTicketCount    int    `json:"unsent_ticket_count"`
	ClientsWithActivity  int    `json:"clients_with_activity"`
}

// ClientTicketRow counts a client's tickets by kind and state.
type ClientTicketRow struct {
	Client    string `json:"client"`
	Total     int    `json:"total"`
	Time      int    `json:"time"`
	Hardware  int    `json:"hardware"`
	Open      int    `json:"open"`
	Completed int    `json:"completed"`
}

// ClientRevenueRow breaks a client's revenue down by source.
type ClientRevenueRow struct {
	Client          string `json:"client"`
	TimeRevenue     string `json:"time_revenue"`
	HardwareRevenue string `json:"hardware_revenue"`
	TotalRevenue    string `json:"total_revenue"`
	BillableHours   string `json:"billable_hours"`
	UnsentRevenue   string `json:"unsent_revenue"`
}

// HardwareItemRow aggregates sold units by catalog description.
type HardwareItemRow struct {
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	Revenue     string `json:"revenue"`
}

// Report is the full aggregation returned by the reporting endpoint and
// rendered on the dashboard.
type Report struct {
	Totals              ReportTotals       `json:"totals"`
	TicketsByClient     []ClientTicketRow  `json:"tickets_by_client"`
	RevenueByClient     []ClientRevenueRow `json:"revenue_by_client"`
	TopHardwareItems    []HardwareItemRow  `json:"top_hardware_items"`
	ClientsMissingRates []string           `json:"clients_missing_rates"`
}

// --- ReportService Interface ---

type ReportService interface {
	TicketMetrics() (*Report, error)
}

type reportService struct {
	ticketRepo repositories.TicketRepository
	directory  ClientDirectory
}

// NewReportService creates a new instance of ReportService.
func NewReportService(tr repositories.TicketRepository, directory ClientDirectory) ReportService {
	return &reportService{ticketRepo: tr, directory: directory}
}

type clientAccumulator struct {
	client          string
	total           int
	timeCount       int
	hardwareCount   int
	openCount       int
	completedCount  int
	timeRevenue     decimal.Decimal
	hardwareRevenue decimal.Decimal
	billableMinutes int64
	unsentRevenue   decimal.Decimal
}

type hardwareAccumulator struct {
	description string
	quantity    int
	revenue     decimal.Decimal
}

func (s *reportService) clientName(t *models.Ticket) string {
	if trimmed := strings.TrimSpace(t.Client); trimmed != "" {
		return trimmed
	}
	if t.ClientKey != "" {
		if name, err := s.directory.ResolveName(t.ClientKey); err == nil && strings.TrimSpace(name) != "" {
			return strings.TrimSpace(name)
		}
		return t.ClientKey
	}
	return "Unknown"
}

func (s *reportService) supportRate(clientKey string) decimal.Decimal {
	if clientKey == "" {
		return decimal.Zero
	}
	rate, err := s.directory.BillingRate(clientKey)
	if err != nil || rate == nil {
		return decimal.Zero
	}
	d, ok := NormalizeAmount(*rate)
	if !ok {
		return decimal.Zero
	}
	return d
}

func quantizeHours(minutes int64) string {
	if minutes == 0 {
		return "0.00"
	}
	return decimal.NewFromInt(minutes).DivRound(sixty, 2).StringFixed(2)
}

// TicketMetrics aggregates revenue and activity across every ticket,
// including ones still staged in projects.
func (s *reportService) TicketMetrics() (*Report, error) {
	tickets, err := s.ticketRepo.GetAllTickets()
	if err != nil {
		return nil, fmt.Errorf("failed to load tickets for reporting: %w", err)
	}

	totals := ReportTotals{}
	timeRevenue := decimal.Zero
	hardwareRevenue := decimal.Zero
	unsentRevenue := decimal.Zero
	unsentTimeRevenue := decimal.Zero
	unsentHardwareRevenue := decimal.Zero
	var billableMinutes int64

	clients := make(map[string]*clientAccumulator)
	hardwareItems := make(map[string]*hardwareAccumulator)
	missingRates := make(map[string]bool)

	for i := range tickets {
		t := &tickets[i]
		totals.TicketsTotal++
		if t.Completed != 0 {
			totals.TicketsCompleted++
		} else {
			totals.TicketsOpen++
		}
		if t.Sent != 0 {
			totals.TicketsSent++
		} else {
			totals.UnsentTicketCount++
		}

		name := s.clientName(t)
		acc := clients[name]
		if acc == nil {
			acc = &clientAccumulator{client: name}
			clients[name] = acc
		}
		acc.total++
		if t.Completed != 0 {
			acc.completedCount++
		} else {
			acc.openCount++
		}

		var revenue decimal.Decimal
		if t.EntryType.IsHardwareLike() {
			totals.HardwareTicketCount++
			acc.hardwareCount++

			quantity := t.HardwareUnits()
			unitPrice := decimal.Zero
			if t.HardwareSalesPrice != nil {
				if d, ok := NormalizeAmount(*t.HardwareSalesPrice); ok {
					unitPrice = d
				}
			}
			revenue = unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
			hardwareRevenue = hardwareRevenue.Add(revenue)
			acc.hardwareRevenue = acc.hardwareRevenue.Add(revenue)
			totals.HardwareUnitsSold += quantity

			description := "Hardware item"
			if t.HardwareDescription != nil && strings.TrimSpace(*t.HardwareDescription) != "" {
				description = strings.TrimSpace(*t.HardwareDescription)
			}
			item := hardwareItems[description]
			if item == nil {
				item = &hardwareAccumulator{description: description}
				hardwareItems[description] = item
			}
			item.quantity += quantity
			item.revenue = item.revenue.Add(revenue)

			if t.Sent == 0 {
				unsentHardwareRevenue = unsentHardwareRevenue.Add(revenue)
				acc.unsentRevenue = acc.unsentRevenue.Add(revenue)
			}
		} else {
			totals.TimeTicketCount++
			acc.timeCount++

			minutes := int64(t.RoundedMinutes)
			if minutes == 0 {
				minutes = int64(t.ElapsedMinutes)
			}
			billableMinutes += minutes
			acc.billableMinutes += minutes

			rate := s.supportRate(t.ClientKey)
			if minutes > 0 {
				revenue = decimal.NewFromInt(minutes).Div(sixty).Mul(rate)
			}
			timeRevenue = timeRevenue.Add(revenue)
			acc.timeRevenue = acc.timeRevenue.Add(revenue)

			if rate.IsZero() {
				missingRates[name] = true
			}
			if t.Sent == 0 {
				unsentTimeRevenue = unsentTimeRevenue.Add(revenue)
				acc.unsentRevenue = acc.unsentRevenue.Add(revenue)
			}
		}

		if t.Sent == 0 {
			unsentRevenue = unsentRevenue.Add(revenue)
		}
	}

	revenueTotal := timeRevenue.Add(hardwareRevenue)

	ticketRows := make([]ClientTicketRow, 0, len(clients))
	revenueRows := make([]ClientRevenueRow, 0, len(clients))
	for _, acc := range clients {
		ticketRows = append(ticketRows, ClientTicketRow{
			Client:    acc.client,
			Total:     acc.total,
			Time:      acc.timeCount,
			Hardware:  acc.hardwareCount,
			Open:      acc.openCount,
			Completed: acc.completedCount,
		})
		revenueRows = append(revenueRows, ClientRevenueRow{
			Client:          acc.client,
			TimeRevenue:     acc.timeRevenue.StringFixed(2),
			HardwareRevenue: acc.hardwareRevenue.StringFixed(2),
			TotalRevenue:    acc.timeRevenue.Add(acc.hardwareRevenue).StringFixed(2),
			BillableHours:   quantizeHours(acc.billableMinutes),
			UnsentRevenue:   acc.unsentRevenue.StringFixed(2),
		})
	}
	sort.Slice(ticketRows, func(i, j int) bool {
		if ticketRows[i].Total != ticketRows[j].Total {
			return ticketRows[i].Total > ticketRows[j].Total
		}
		return ticketRows[i].Client < ticketRows[j].Client
	})
	sort.Slice(revenueRows, func(i, j int) bool {
		di, _ := decimal.NewFromString(revenueRows[i].TotalRevenue)
		dj, _ := decimal.NewFromString(revenueRows[j].TotalRevenue)
		if !di.Equal(dj) {
			return di.GreaterThan(dj)
		}
		return revenueRows[i].Client < revenueRows[j].Client
	})

	hardwareRows := make([]HardwareItemRow, 0, len(hardwareItems))
	for _, item := range hardwareItems {
		hardwareRows = append(hardwareRows, HardwareItemRow{
			Description: item.description,
			Quantity:    item.quantity,
			Revenue:     item.revenue.StringFixed(2),
		})
	}
	sort.Slice(hardwareRows, func(i, j int) bool {
		di, _ := decimal.NewFromString(hardwareRows[i].Revenue)
		dj, _ := decimal.NewFromString(hardwareRows[j].Revenue)
		if !di.Equal(dj) {
			return di.GreaterThan(dj)
		}
		return hardwareRows[i].Description < hardwareRows[j].Description
	})
	if len(hardwareRows) > 10 {
		hardwareRows = hardwareRows[:10]
	}

	missing := make([]string, 0, len(missingRates))
	for name := range missingRates {
		missing = append(missing, name)
	}
	sort.Strings(missing)

	totals.BillableMinutes = int(billableMinutes)
	totals.BillableHours = quantizeHours(billableMinutes)
	totals.RevenueTime = timeRevenue.StringFixed(2)
	totals.RevenueHardware = hardwareRevenue.StringFixed(2)
	totals.RevenueTotal = revenueTotal.StringFixed(2)
	if totals.TicketsTotal > 0 {
		totals.AvgRevenuePerTicket = revenueTotal.DivRound(decimal.NewFromInt(int64(totals.TicketsTotal)), 2).StringFixed(2)
	} else {
		totals.AvgRevenuePerTicket = "0.00"
	}
	if totals.TimeTicketCount > 0 {
		totals.AvgHoursPerTicket = decimal.NewFromInt(billableMinutes).
			DivRound(decimal.NewFromInt(int64(totals.TimeTicketCount)*60), 2).StringFixed(2)
	} else {
		totals.AvgHoursPerTicket = "0.00"
	}
	totals.UnsentRevenue = unsentRevenue.StringFixed(2)
	totals.UnsentTimeRevenue = unsentTimeRevenue.StringFixed(2)
	totals.UnsentHardwareRev = unsentHardwareRevenue.StringFixed(2)
	totals.ClientsWithActivity = len(clients)

	return &Report{
		Totals:              totals,
		TicketsByClient:     ticketRows,
		RevenueByClient:     revenueRows,
		TopHardwareItems:    hardwareRows,
		ClientsMissingRates: missing,
	}, nil
}
