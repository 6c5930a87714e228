package hr

import (
	"context"
	"testing"
)

func seedReportData(t *testing.T) (*Service, Company, Company) {
	t.Helper()
	svc := newTestService(t)
	ctx := context.Background()

	acme := seedCompany(t, svc, "Acme", "12345678000190")
	globo := seedCompany(t, svc, "Globo", "98765432000110")

	mustRequest := func(companyID int, date string, shifts []NewShift) DailyRequest {
		req, err := svc.CreateRequest(ctx, 1, NewRequest{
			CompanyID:   companyID,
			RequestDate: date,
			Shifts:      shifts,
		})
		if err != nil {
			t.Fatalf("seed request: %v", err)
		}
		return req
	}

	mustRequest(acme.ID, "2026-03-10", []NewShift{
		{StartTime: "08:00", EndTime: "16:00", PaymentAmount: 100, Quantity: 2},
	})
	mustRequest(acme.ID, "2026-03-11", []NewShift{
		{StartTime: "08:00", EndTime: "16:00", PaymentAmount: 200, Quantity: 1, HasDiscount: true, DiscountPercentage: 10},
	})
	mustRequest(globo.ID, "2026-03-10", []NewShift{
		{StartTime: "18:00", EndTime: "23:00", PaymentAmount: 80, Quantity: 3},
	})

	return svc, acme, globo
}

func TestDashboardStats(t *testing.T) {
	svc, _, _ := seedReportData(t)

	stats, err := svc.DashboardStats(context.Background(), RequestFilter{})
	if err != nil {
		t.Fatalf("dashboard stats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected 2 companies, got %d", len(stats))
	}
	if stats[0].CompanyName != "Acme" || stats[0].RequestCount != 2 {
		t.Fatalf("unexpected first row: %+v", stats[0])
	}
	if stats[1].CompanyName != "Globo" || stats[1].RequestCount != 1 {
		t.Fatalf("unexpected second row: %+v", stats[1])
	}
}

func TestDashboardStatsRespectsDateFilter(t *testing.T) {
	svc, _, _ := seedReportData(t)

	stats, err := svc.DashboardStats(context.Background(), RequestFilter{From: "2026-03-11", To: "2026-03-11"})
	if err != nil {
		t.Fatalf("dashboard stats: %v", err)
	}
	if len(stats) != 1 || stats[0].CompanyName != "Acme" || stats[0].RequestCount != 1 {
		t.Fatalf("unexpected filtered stats: %+v", stats)
	}
}

func TestAttendanceStats(t *testing.T) {
	svc, acme, _ := seedReportData(t)
	ctx := context.Background()

	worker := seedUser(t, svc, "presenca@space.dev", RoleContratado)
	requests, err := svc.ListRequests(ctx, RequestFilter{CompanyID: acme.ID})
	if err != nil {
		t.Fatalf("list requests: %v", err)
	}
	asg, err := svc.AssignEmployee(ctx, requests[0].Shifts[0].ID, worker.ID)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := svc.UpdateAssignmentStatus(ctx, asg.ID, AssignmentStatusPresent); err != nil {
		t.Fatalf("mark present: %v", err)
	}

	stats, err := svc.AttendanceStats(ctx, RequestFilter{})
	if err != nil {
		t.Fatalf("attendance stats: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("expected single datapoint, got %+v", stats)
	}
	row := stats[0]
	if row.CompanyName != "Acme" || row.Status != AssignmentStatusPresent || row.Count != 1 {
		t.Fatalf("unexpected datapoint: %+v", row)
	}
}

func TestPaymentsReportAppliesDiscounts(t *testing.T) {
	svc, _, _ := seedReportData(t)

	report, err := svc.PaymentsReport(context.Background(), "2026-03-01", "2026-03-31")
	if err != nil {
		t.Fatalf("payments report: %v", err)
	}
	if len(report.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(report.Rows))
	}

	// Rows are ordered by date then company name.
	acmeDay1 := report.Rows[0]
	if acmeDay1.CompanyName != "Acme" || acmeDay1.Gross != 200 || acmeDay1.Discount != 0 || acmeDay1.Net != 200 {
		t.Fatalf("unexpected row: %+v", acmeDay1)
	}
	globoDay1 := report.Rows[1]
	if globoDay1.CompanyName != "Globo" || globoDay1.Gross != 240 || globoDay1.Net != 240 {
		t.Fatalf("unexpected row: %+v", globoDay1)
	}
	acmeDay2 := report.Rows[2]
	if acmeDay2.Gross != 200 || acmeDay2.Discount != 20 || acmeDay2.Net != 180 {
		t.Fatalf("discount not applied: %+v", acmeDay2)
	}
	if report.Total != 620 {
		t.Fatalf("unexpected total: %v", report.Total)
	}
}

func TestPaymentsReportExcludesCancelledRequests(t *testing.T) {
	svc, acme, _ := seedReportData(t)
	ctx := context.Background()

	requests, err := svc.ListRequests(ctx, RequestFilter{CompanyID: acme.ID, From: "2026-03-11", To: "2026-03-11"})
	if err != nil {
		t.Fatalf("list requests: %v", err)
	}
	if _, err := svc.UpdateRequestStatus(ctx, requests[0].ID, RequestStatusCancelled); err != nil {
		t.Fatalf("cancel request: %v", err)
	}

	report, err := svc.PaymentsReport(ctx, "2026-03-01", "2026-03-31")
	if err != nil {
		t.Fatalf("payments report: %v", err)
	}
	if len(report.Rows) != 2 {
		t.Fatalf("cancelled request must be excluded: %+v", report.Rows)
	}
	if report.Total != 440 {
		t.Fatalf("unexpected total: %v", report.Total)
	}
}
