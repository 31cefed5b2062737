package service

import (
	"github.com/mmynk/chama/internal/calculator"
	"github.com/mmynk/chama/internal/engine"
	"github.com/mmynk/chama/internal/models"
	"github.com/mmynk/chama/pkg/api"
)

func convertSlice[M any, A any](in []M, fn func(M) A) []A {
	out := make([]A, len(in))
	for i, m := range in {
		out[i] = fn(m)
	}
	return out
}

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Phone:       u.Phone,
		CreatedAt:   u.CreatedAt,
	}
}

func toAPIChama(c *models.Chama) *api.Chama {
	return &api.Chama{
		ID:                  c.ID,
		Name:                c.Name,
		Type:                string(c.Type),
		Status:              string(c.Status),
		MaxMembers:          c.MaxMembers,
		InviteCode:          c.InviteCode,
		DefaultInterestRate: c.DefaultInterestRate,
		CreatedBy:           c.CreatedBy,
		CreatedAt:           c.CreatedAt,
	}
}

func toAPIMember(m *models.ChamaMember) *api.Member {
	return &api.Member{
		ID:          m.ID,
		ChamaID:     m.ChamaID,
		UserID:      m.UserID,
		DisplayName: m.DisplayName,
		Role:        string(m.Role),
		Status:      string(m.Status),
		JoinedAt:    m.JoinedAt,
	}
}

func toAPICycle(c *models.Cycle) *api.Cycle {
	return &api.Cycle{
		ID:                 c.ID,
		ChamaID:            c.ChamaID,
		Status:             string(c.Status),
		Frequency:          string(c.Frequency),
		ContributionAmount: c.ContributionAmount,
		PayoutAmount:       c.PayoutAmount,
		SavingsAmount:      c.SavingsAmount,
		ServiceFee:         c.ServiceFee,
		TotalPeriods:       c.TotalPeriods,
		CurrentPeriod:      c.CurrentPeriod,
		StartDate:          c.StartDate,
		CreatedAt:          c.CreatedAt,
	}
}

func toAPICycleMember(m *models.CycleMember) *api.CycleMember {
	return &api.CycleMember{
		ID:                  m.ID,
		UserID:              m.UserID,
		TurnOrder:           m.TurnOrder,
		AssignedNumber:      m.AssignedNumber,
		CustomSavingsAmount: m.CustomSavingsAmount,
		HideSavings:         m.HideSavings,
	}
}

func toAPICycleView(v *engine.CycleView) (*api.Cycle, []*api.CycleMember) {
	return toAPICycle(v.Cycle), convertSlice(v.Members, toAPICycleMember)
}

func toAPIContribution(c *models.Contribution) *api.Contribution {
	return &api.Contribution{
		ID:           c.ID,
		CycleID:      c.CycleID,
		UserID:       c.UserID,
		PeriodNumber: c.PeriodNumber,
		AmountDue:    c.AmountDue,
		AmountPaid:   c.AmountPaid,
		DueDate:      c.DueDate,
		Status:       string(c.Status),
		PaidAt:       c.PaidAt,
		ConfirmedBy:  c.ConfirmedBy,
		ConfirmedAt:  c.ConfirmedAt,
	}
}

func toAPIAllocation(a calculator.Allocation) *api.Allocation {
	return &api.Allocation{
		Contribution: a.Contribution,
		Savings:      a.Savings,
		PayoutPool:   a.PayoutPool,
		Fee:          a.Fee,
	}
}

func toAPIPayout(p *models.Payout) *api.Payout {
	return &api.Payout{
		ID:                p.ID,
		CycleID:           p.CycleID,
		RecipientID:       p.RecipientID,
		PeriodNumber:      p.PeriodNumber,
		Amount:            p.Amount,
		Status:            string(p.Status),
		ScheduledDate:     p.ScheduledDate,
		PaidAt:            p.PaidAt,
		PaidBy:            p.PaidBy,
		ConfirmedByMember: p.ConfirmedByMember,
		ConfirmedAt:       p.ConfirmedAt,
		Notes:             p.Notes,
	}
}

func toAPISavingsTransaction(t *models.SavingsTransaction) *api.SavingsTransaction {
	return &api.SavingsTransaction{
		ID:           t.ID,
		ChamaID:      t.ChamaID,
		CycleID:      t.CycleID,
		Direction:    string(t.Direction),
		Amount:       t.Amount,
		BalanceAfter: t.BalanceAfter,
		Reason:       string(t.Reason),
		CreatedAt:    t.CreatedAt,
	}
}

func toAPIWalletTransaction(t *models.WalletTransaction) *api.WalletTransaction {
	return &api.WalletTransaction{
		ID:          t.ID,
		ChamaID:     t.ChamaID,
		Type:        string(t.Type),
		Direction:   string(t.Direction),
		Amount:      t.Amount,
		ReferenceID: t.ReferenceID,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
	}
}

func toAPILoan(l *models.Loan) *api.Loan {
	return &api.Loan{
		ID:           l.ID,
		ChamaID:      l.ChamaID,
		BorrowerID:   l.BorrowerID,
		Principal:    l.Principal,
		InterestRate: l.InterestRate,
		Status:       string(l.Status),
		AmountPaid:   l.AmountPaid,
		DueDate:      l.DueDate,
		Purpose:      l.Purpose,
		ApprovedAt:   l.ApprovedAt,
		CreatedAt:    l.CreatedAt,
	}
}

func toAPIGuarantor(g *models.LoanGuarantor) *api.Guarantor {
	return &api.Guarantor{
		ID:          g.ID,
		GuarantorID: g.GuarantorID,
		Status:      string(g.Status),
		RespondedAt: g.RespondedAt,
	}
}

func toAPILoanPayment(p *models.LoanPayment) *api.LoanPayment {
	return &api.LoanPayment{
		ID:         p.ID,
		LoanID:     p.LoanID,
		PayerID:    p.PayerID,
		Amount:     p.Amount,
		Status:     string(p.Status),
		ReviewedBy: p.ReviewedBy,
		ReviewedAt: p.ReviewedAt,
		CreatedAt:  p.CreatedAt,
	}
}

func toAPIBreakdown(b calculator.LoanBreakdown) *api.LoanBreakdown {
	return &api.LoanBreakdown{
		Principal:            b.Principal,
		OriginalInterest:     b.OriginalInterest,
		OriginalTotal:        b.OriginalTotal,
		OutstandingPrincipal: b.OutstandingPrincipal,
		PenaltyInterest:      b.PenaltyInterest,
		PenaltyRate:          b.PenaltyRate,
		TotalOutstanding:     b.TotalOutstanding,
		IsOverdue:            b.IsOverdue,
		DaysOverdue:          b.DaysOverdue,
	}
}

func toAPILoanDetail(d *engine.LoanDetail) *api.LoanDetail {
	return &api.LoanDetail{
		Loan:       toAPILoan(d.Loan),
		Guarantors: convertSlice(d.Guarantors, toAPIGuarantor),
		Payments:   convertSlice(d.Payments, toAPILoanPayment),
		Breakdown:  toAPIBreakdown(d.Breakdown),
	}
}

func toAPINotification(n *models.Notification) *api.Notification {
	return &api.Notification{
		ID:        n.ID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Data:      n.Data,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}
