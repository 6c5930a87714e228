package hr

import (
	"context"
	"math"
	"sort"
)

// DashboardStats counts daily requests per company for the filtered period.
func (s *Service) DashboardStats(ctx context.Context, filter RequestFilter) ([]CompanyRequestCount, error) {
	requests, err := s.ListRequests(ctx, filter)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, req := range requests {
		counts[companyName(req)]++
	}

	out := make([]CompanyRequestCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, CompanyRequestCount{CompanyName: name, RequestCount: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RequestCount != out[j].RequestCount {
			return out[i].RequestCount > out[j].RequestCount
		}
		return out[i].CompanyName < out[j].CompanyName
	})
	return out, nil
}

// AttendanceStats counts shift assignments per company and status.
func (s *Service) AttendanceStats(ctx context.Context, filter RequestFilter) ([]AttendanceCount, error) {
	requests, err := s.ListRequests(ctx, filter)
	if err != nil {
		return nil, err
	}

	type key struct {
		company string
		status  string
	}
	counts := make(map[key]int)
	for _, req := range requests {
		name := companyName(req)
		for _, shift := range req.Shifts {
			for _, asg := range shift.Assignments {
				counts[key{company: name, status: asg.Status}]++
			}
		}
	}

	out := make([]AttendanceCount, 0, len(counts))
	for k, count := range counts {
		out = append(out, AttendanceCount{CompanyName: k.company, Status: k.status, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CompanyName != out[j].CompanyName {
			return out[i].CompanyName < out[j].CompanyName
		}
		return out[i].Status < out[j].Status
	})
	return out, nil
}

// PaymentsReport sums shift payments per company and date. Each shift
// contributes payment_amount times quantity; the shift discount applies
// to that product. Cancelled requests are excluded.
func (s *Service) PaymentsReport(ctx context.Context, from, to string) (PaymentsReport, error) {
	requests, err := s.ListRequests(ctx, RequestFilter{From: from, To: to})
	if err != nil {
		return PaymentsReport{}, err
	}

	type key struct {
		company string
		date    string
	}
	rows := make(map[key]*PaymentsReportRow)
	for _, req := range requests {
		if req.Status == RequestStatusCancelled {
			continue
		}
		k := key{company: companyName(req), date: req.RequestDate}
		row, ok := rows[k]
		if !ok {
			row = &PaymentsReportRow{CompanyName: k.company, RequestDate: k.date}
			rows[k] = row
		}
		for _, shift := range req.Shifts {
			gross := shift.PaymentAmount * float64(shift.Quantity)
			discount := 0.0
			if shift.HasDiscount {
				discount = gross * shift.DiscountPercentage / 100
			}
			row.Gross += gross
			row.Discount += discount
			row.Net += gross - discount
		}
	}

	report := PaymentsReport{From: from, To: to, Rows: make([]PaymentsReportRow, 0, len(rows))}
	for _, row := range rows {
		row.Gross = round2(row.Gross)
		row.Discount = round2(row.Discount)
		row.Net = round2(row.Net)
		report.Rows = append(report.Rows, *row)
		report.Total += row.Net
	}
	report.Total = round2(report.Total)
	sort.Slice(report.Rows, func(i, j int) bool {
		if report.Rows[i].RequestDate != report.Rows[j].RequestDate {
			return report.Rows[i].RequestDate < report.Rows[j].RequestDate
		}
		return report.Rows[i].CompanyName < report.Rows[j].CompanyName
	})
	return report, nil
}

func companyName(req DailyRequest) string {
	if req.Company != nil {
		return req.Company.Name
	}
	return ""
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
