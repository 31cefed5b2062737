package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// Auth

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"display_name" validate:"required,max=100"`
	Phone       string `json:"phone" validate:"omitempty,e164"`
	Password    string `json:"password" validate:"required"`
}

type RegisterResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type LogoutRequest struct{}

type LogoutResponse struct{}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User *User `json:"user"`
}

// Chamas

type CreateChamaRequest struct {
	Name                string          `json:"name" validate:"required,max=100"`
	Type                string          `json:"type" validate:"required,oneof=savings merry_go_round hybrid"`
	MaxMembers          int             `json:"max_members" validate:"min=2,max=500"`
	DefaultInterestRate decimal.Decimal `json:"default_interest_rate" validate:"gte=0,lte=100"`
}

type CreateChamaResponse struct {
	Chama *Chama `json:"chama"`
}

type JoinChamaRequest struct {
	InviteCode string `json:"invite_code" validate:"required"`
}

type JoinChamaResponse struct {
	Chama  *Chama  `json:"chama"`
	Member *Member `json:"member"`
}

type GetChamaRequest struct {
	ChamaID string `json:"chama_id" validate:"required"`
}

type GetChamaResponse struct {
	Chama   *Chama    `json:"chama"`
	Members []*Member `json:"members"`
}

type ListChamasRequest struct{}

type ListChamasResponse struct {
	Chamas []*Chama `json:"chamas"`
}

type RemoveMemberRequest struct {
	ChamaID string `json:"chama_id" validate:"required"`
	UserID  string `json:"user_id" validate:"required"`
}

type RemoveMemberResponse struct{}

type CloseChamaRequest struct {
	ChamaID string `json:"chama_id" validate:"required"`
}

type CloseChamaResponse struct{}

// Cycles

type CreateCycleRequest struct {
	ChamaID            string          `json:"chama_id" validate:"required"`
	Frequency          string          `json:"frequency" validate:"required,oneof=weekly biweekly monthly"`
	ContributionAmount decimal.Decimal `json:"contribution_amount" validate:"gt=0"`
	PayoutAmount       decimal.Decimal `json:"payout_amount" validate:"gte=0"`
	SavingsAmount      decimal.Decimal `json:"savings_amount" validate:"gte=0"`
	ServiceFee         decimal.Decimal `json:"service_fee" validate:"gte=0"`
	TotalPeriods       int             `json:"total_periods" validate:"gte=0"`
	StartDate          *time.Time      `json:"start_date,omitempty"`
	MemberIDs          []string        `json:"member_ids" validate:"omitempty,unique,dive,required"`
}

type CreateCycleResponse struct {
	Cycle   *Cycle         `json:"cycle"`
	Members []*CycleMember `json:"members"`
}

type GetCycleRequest struct {
	CycleID string `json:"cycle_id" validate:"required"`
}

type GetCycleResponse struct {
	Cycle   *Cycle         `json:"cycle"`
	Members []*CycleMember `json:"members"`
}

type ListCyclesRequest struct {
	ChamaID string `json:"chama_id" validate:"required"`
}

type ListCyclesResponse struct {
	Cycles []*Cycle `json:"cycles"`
}

// CycleActionRequest drives the lifecycle procedures: Start, Pause,
// Resume, Advance, Complete and Cancel.
type CycleActionRequest struct {
	CycleID string `json:"cycle_id" validate:"required"`
}

type CycleActionResponse struct {
	Cycle *Cycle `json:"cycle"`
}

type SetMemberSavingsRequest struct {
	CycleMemberID string `json:"cycle_member_id" validate:"required"`
	// Amount clears the override when null.
	Amount *decimal.Decimal `json:"amount"`
}

type SetMemberSavingsResponse struct {
	Member *CycleMember `json:"member"`
}

type SetHideSavingsRequest struct {
	CycleMemberID string `json:"cycle_member_id" validate:"required"`
	Hide          bool   `json:"hide"`
}

type SetHideSavingsResponse struct {
	Member *CycleMember `json:"member"`
}

// Contributions

type RecordPaymentRequest struct {
	CycleID string `json:"cycle_id" validate:"required"`
	// UserID defaults to the caller; admins may record for others.
	UserID string `json:"user_id,omitempty"`
	// Period defaults to the current period.
	Period int             `json:"period,omitempty" validate:"gte=0"`
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
}

type RecordPaymentResponse struct {
	Contribution *Contribution `json:"contribution"`
}

type ConfirmContributionRequest struct {
	ContributionID string `json:"contribution_id" validate:"required"`
}

type ConfirmContributionResponse struct {
	Contribution *Contribution `json:"contribution"`
	Allocation   *Allocation   `json:"allocation"`
}

type ListContributionsRequest struct {
	CycleID string `json:"cycle_id" validate:"required"`
	// Period lists every period when zero.
	Period int `json:"period,omitempty" validate:"gte=0"`
}

type ListContributionsResponse struct {
	Contributions []*Contribution `json:"contributions"`
}

// Payouts

type SendPayoutRequest struct {
	PayoutID string `json:"payout_id" validate:"required"`
	Notes    string `json:"notes,omitempty" validate:"max=500"`
}

type SendPayoutResponse struct {
	Payout *Payout `json:"payout"`
}

type ConfirmPayoutRequest struct {
	PayoutID string `json:"payout_id" validate:"required"`
}

type ConfirmPayoutResponse struct {
	Payout *Payout `json:"payout"`
}

type ListPayoutsRequest struct {
	CycleID string `json:"cycle_id" validate:"required"`
}

type ListPayoutsResponse struct {
	Payouts []*Payout `json:"payouts"`
}

// Loans

type RequestLoanRequest struct {
	ChamaID string          `json:"chama_id" validate:"required"`
	Amount  decimal.Decimal `json:"amount" validate:"gt=0"`
	// InterestRate is a percentage; zero uses the chama default.
	InterestRate decimal.Decimal `json:"interest_rate" validate:"gte=0,lte=100"`
	Purpose      string          `json:"purpose,omitempty" validate:"max=500"`
	GuarantorIDs []string        `json:"guarantor_ids" validate:"omitempty,unique,dive,required"`
}

type LoanDetail struct {
	Loan       *Loan          `json:"loan"`
	Guarantors []*Guarantor   `json:"guarantors"`
	Payments   []*LoanPayment `json:"payments"`
	Breakdown  *LoanBreakdown `json:"breakdown"`
}

type RequestLoanResponse struct {
	Loan *LoanDetail `json:"loan"`
}

type RespondToGuaranteeRequest struct {
	LoanID  string `json:"loan_id" validate:"required"`
	Approve bool   `json:"approve"`
}

// LoanActionRequest drives ApproveLoan, DisburseLoan and CancelLoan.
type LoanActionRequest struct {
	LoanID string `json:"loan_id" validate:"required"`
}

type LoanActionResponse struct {
	Loan *Loan `json:"loan"`
}

type SubmitLoanPaymentRequest struct {
	LoanID string          `json:"loan_id" validate:"required"`
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
}

type ReviewLoanPaymentRequest struct {
	PaymentID string `json:"payment_id" validate:"required"`
	Approve   bool   `json:"approve"`
}

type LoanPaymentResponse struct {
	Payment *LoanPayment `json:"payment"`
}

type GetLoanRequest struct {
	LoanID string `json:"loan_id" validate:"required"`
}

type GetLoanResponse struct {
	Loan *LoanDetail `json:"loan"`
}

type ListLoansRequest struct {
	ChamaID string `json:"chama_id" validate:"required"`
}

type ListLoansResponse struct {
	Loans []*Loan `json:"loans"`
}

type GetLoanLimitRequest struct {
	ChamaID string `json:"chama_id" validate:"required"`
}

type GetLoanLimitResponse struct {
	Savings decimal.Decimal `json:"savings"`
	Limit   decimal.Decimal `json:"limit"`
}

type GetLoanBreakdownRequest struct {
	LoanID string `json:"loan_id" validate:"required"`
}

type GetLoanBreakdownResponse struct {
	Breakdown *LoanBreakdown `json:"breakdown"`
}

// Savings, wallet and notifications

type GetSavingsRequest struct{}

type GetSavingsResponse struct {
	Balance decimal.Decimal            `json:"balance"`
	ByChama map[string]decimal.Decimal `json:"by_chama"`
}

type ListSavingsTransactionsRequest struct{}

type ListSavingsTransactionsResponse struct {
	Transactions []*SavingsTransaction `json:"transactions"`
}

type WithdrawSavingsRequest struct {
	ChamaID string          `json:"chama_id" validate:"required"`
	UserID  string          `json:"user_id" validate:"required"`
	Amount  decimal.Decimal `json:"amount" validate:"gt=0"`
}

type WithdrawSavingsResponse struct {
	Transaction *SavingsTransaction `json:"transaction"`
}

type ListWalletTransactionsRequest struct {
	// ChamaID lists every chama when empty.
	ChamaID string `json:"chama_id,omitempty"`
}

type ListWalletTransactionsResponse struct {
	Transactions []*WalletTransaction `json:"transactions"`
}

type ListNotificationsRequest struct {
	UnreadOnly bool `json:"unread_only"`
}

type ListNotificationsResponse struct {
	Notifications []*Notification `json:"notifications"`
}

type MarkNotificationReadRequest struct {
	NotificationID string `json:"notification_id" validate:"required"`
}

type MarkNotificationReadResponse struct{}
