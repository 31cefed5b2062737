package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/chama/internal/models"
)

const loanColumns = `id, chama_id, borrower_id, principal, interest_rate, status, amount_paid,
	due_date, purpose, approved_at, created_at`

func scanLoan(row scanner) (*models.Loan, error) {
	l := &models.Loan{}
	var createdAt int64
	var dueDate, approvedAt sql.NullInt64
	if err := row.Scan(&l.ID, &l.ChamaID, &l.BorrowerID, &l.Principal, &l.InterestRate, &l.Status, &l.AmountPaid,
		&dueDate, &l.Purpose, &approvedAt, &createdAt); err != nil {
		return nil, err
	}
	l.DueDate = timePtr(dueDate)
	l.ApprovedAt = timePtr(approvedAt)
	l.CreatedAt = fromUnix(createdAt)
	return l, nil
}

// CreateLoan inserts a loan and its guarantor rows.
func (q *queries) CreateLoan(ctx context.Context, loan *models.Loan, guarantors []*models.LoanGuarantor) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO loans (`+loanColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		loan.ID, loan.ChamaID, loan.BorrowerID, loan.Principal, loan.InterestRate, loan.Status, loan.AmountPaid,
		nullUnix(loan.DueDate), loan.Purpose, nullUnix(loan.ApprovedAt), toUnix(loan.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert loan: %w", err)
	}

	for _, g := range guarantors {
		_, err = q.db.ExecContext(ctx,
			`INSERT INTO loan_guarantors (id, loan_id, guarantor_id, status, responded_at, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			g.ID, loan.ID, g.GuarantorID, g.Status, nullUnix(g.RespondedAt), toUnix(g.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert loan guarantor: %w", err)
		}
	}
	return nil
}

// GetLoan retrieves a loan by ID.
func (q *queries) GetLoan(ctx context.Context, id string) (*models.Loan, error) {
	l, err := scanLoan(q.db.QueryRowContext(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "loan", id)
	}
	return l, nil
}

// ListLoans returns a chama's loans, newest first.
func (q *queries) ListLoans(ctx context.Context, chamaID string) ([]*models.Loan, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE chama_id = ? ORDER BY created_at DESC, rowid DESC`, chamaID)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	defer rows.Close()

	var loans []*models.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate loans: %w", err)
	}
	return loans, nil
}

// CountOpenLoans counts a borrower's pending, approved and active loans in a chama.
func (q *queries) CountOpenLoans(ctx context.Context, chamaID, borrowerID string) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM loans WHERE chama_id = ? AND borrower_id = ? AND status IN (?, ?, ?)`,
		chamaID, borrowerID, models.LoanPending, models.LoanApproved, models.LoanActive,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count open loans: %w", err)
	}
	return n, nil
}

// CountActiveGuarantees counts live guarantees held by a user.
func (q *queries) CountActiveGuarantees(ctx context.Context, guarantorID string) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM loan_guarantors g
		 JOIN loans l ON l.id = g.loan_id
		 WHERE g.guarantor_id = ? AND g.status IN (?, ?) AND l.status IN (?, ?, ?)`,
		guarantorID, models.GuarantorPending, models.GuarantorApproved,
		models.LoanPending, models.LoanApproved, models.LoanActive,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count active guarantees: %w", err)
	}
	return n, nil
}

// UpdateLoanStatus changes the loan status if it is still from.
func (q *queries) UpdateLoanStatus(ctx context.Context, id string, from, to models.LoanStatus) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE loans SET status = ? WHERE id = ? AND status = ?`, to, id, from)
	if err != nil {
		return fmt.Errorf("failed to update loan status: %w", err)
	}
	return expectOne(res, "update loan status")
}

// ApproveLoan moves a pending loan to approved.
func (q *queries) ApproveLoan(ctx context.Context, id string, approvedAt, dueDate time.Time) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE loans SET status = ?, approved_at = ?, due_date = COALESCE(due_date, ?)
		 WHERE id = ? AND status = ?`,
		models.LoanApproved, toUnix(approvedAt), toUnix(dueDate),
		id, models.LoanPending,
	)
	if err != nil {
		return fmt.Errorf("failed to approve loan: %w", err)
	}
	return expectOne(res, "approve loan")
}

// ApplyLoanPayment adds an approved repayment to the loan.
func (q *queries) ApplyLoanPayment(ctx context.Context, id string, prevPaid, newPaid decimal.Decimal, status models.LoanStatus) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE loans SET amount_paid = ?, status = ?
		 WHERE id = ? AND status = ? AND amount_paid = ?`,
		newPaid, status, id, models.LoanActive, prevPaid,
	)
	if err != nil {
		return fmt.Errorf("failed to apply loan payment: %w", err)
	}
	return expectOne(res, "apply loan payment")
}

const guarantorColumns = `id, loan_id, guarantor_id, status, responded_at, created_at`

func scanGuarantor(row scanner) (*models.LoanGuarantor, error) {
	g := &models.LoanGuarantor{}
	var createdAt int64
	var respondedAt sql.NullInt64
	if err := row.Scan(&g.ID, &g.LoanID, &g.GuarantorID, &g.Status, &respondedAt, &createdAt); err != nil {
		return nil, err
	}
	g.RespondedAt = timePtr(respondedAt)
	g.CreatedAt = fromUnix(createdAt)
	return g, nil
}

// ListGuarantors returns the guarantors of a loan.
func (q *queries) ListGuarantors(ctx context.Context, loanID string) ([]*models.LoanGuarantor, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+guarantorColumns+` FROM loan_guarantors WHERE loan_id = ? ORDER BY created_at, rowid`, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to list guarantors: %w", err)
	}
	defer rows.Close()

	var guarantors []*models.LoanGuarantor
	for rows.Next() {
		g, err := scanGuarantor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan guarantor: %w", err)
		}
		guarantors = append(guarantors, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate guarantors: %w", err)
	}
	return guarantors, nil
}

// GetGuarantor retrieves one guarantor row of a loan.
func (q *queries) GetGuarantor(ctx context.Context, loanID, guarantorID string) (*models.LoanGuarantor, error) {
	g, err := scanGuarantor(q.db.QueryRowContext(ctx,
		`SELECT `+guarantorColumns+` FROM loan_guarantors WHERE loan_id = ? AND guarantor_id = ?`,
		loanID, guarantorID))
	if err != nil {
		return nil, notFound(err, "guarantee", guarantorID)
	}
	return g, nil
}

// RespondGuarantee records a guarantor's decision.
func (q *queries) RespondGuarantee(ctx context.Context, id string, status models.GuarantorStatus, at time.Time) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE loan_guarantors SET status = ?, responded_at = ? WHERE id = ? AND status = ?`,
		status, toUnix(at), id, models.GuarantorPending,
	)
	if err != nil {
		return fmt.Errorf("failed to respond to guarantee: %w", err)
	}
	return expectOne(res, "respond to guarantee")
}

const loanPaymentColumns = `id, loan_id, payer_id, amount, status, reviewed_by, reviewed_at, created_at`

func scanLoanPayment(row scanner) (*models.LoanPayment, error) {
	p := &models.LoanPayment{}
	var createdAt int64
	var reviewedAt sql.NullInt64
	if err := row.Scan(&p.ID, &p.LoanID, &p.PayerID, &p.Amount, &p.Status, &p.ReviewedBy, &reviewedAt, &createdAt); err != nil {
		return nil, err
	}
	p.ReviewedAt = timePtr(reviewedAt)
	p.CreatedAt = fromUnix(createdAt)
	return p, nil
}

// CreateLoanPayment inserts a repayment proposal.
func (q *queries) CreateLoanPayment(ctx context.Context, p *models.LoanPayment) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO loan_payments (`+loanPaymentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.LoanID, p.PayerID, p.Amount, p.Status, p.ReviewedBy, nullUnix(p.ReviewedAt), toUnix(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert loan payment: %w", err)
	}
	return nil
}

// GetLoanPayment retrieves a repayment proposal by ID.
func (q *queries) GetLoanPayment(ctx context.Context, id string) (*models.LoanPayment, error) {
	p, err := scanLoanPayment(q.db.QueryRowContext(ctx,
		`SELECT `+loanPaymentColumns+` FROM loan_payments WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "loan payment", id)
	}
	return p, nil
}

// ListLoanPayments returns a loan's repayment proposals, oldest first.
func (q *queries) ListLoanPayments(ctx context.Context, loanID string) ([]*models.LoanPayment, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+loanPaymentColumns+` FROM loan_payments WHERE loan_id = ? ORDER BY created_at, rowid`, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to list loan payments: %w", err)
	}
	defer rows.Close()

	var payments []*models.LoanPayment
	for rows.Next() {
		p, err := scanLoanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate loan payments: %w", err)
	}
	return payments, nil
}

// ReviewLoanPayment records an admin's decision on a pending repayment.
func (q *queries) ReviewLoanPayment(ctx context.Context, id string, status models.LoanPaymentStatus, reviewer string, at time.Time) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE loan_payments SET status = ?, reviewed_by = ?, reviewed_at = ? WHERE id = ? AND status = ?`,
		status, reviewer, toUnix(at), id, models.LoanPaymentPending,
	)
	if err != nil {
		return fmt.Errorf("failed to review loan payment: %w", err)
	}
	return expectOne(res, "review loan payment")
}
