package models

import "time"

type NotificationType string

const (
	NotifyCycleStarted          NotificationType = "cycle_started"
	NotifyCyclePeriodAdvanced   NotificationType = "cycle_period_advanced"
	NotifyCycleCompleted        NotificationType = "cycle_completed"
	NotifyCycleCancelled        NotificationType = "cycle_cancelled"
	NotifyContributionConfirmed NotificationType = "contribution_confirmed"
	NotifyPayoutSent            NotificationType = "payout_sent"
	NotifyPayoutReceived        NotificationType = "payout_received"
	NotifyGuaranteeRequested    NotificationType = "loan_guarantee_requested"
	NotifyGuaranteeRejected     NotificationType = "loan_guarantee_rejected"
	NotifyLoanApproved          NotificationType = "loan_approved"
	NotifyLoanCancelled         NotificationType = "loan_cancelled"
	NotifyLoanPaymentApproved   NotificationType = "loan_payment_approved"
	NotifyLoanPaymentRejected   NotificationType = "loan_payment_rejected"
)

// Notification is an in-app notification addressed to one user.
type Notification struct {
	ID        string
	UserID    string
	Type      NotificationType
	Title     string
	Message   string
	Data      map[string]string
	Read      bool
	CreatedAt time.Time
}
