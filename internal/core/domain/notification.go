package domain

import "github.com/shopspring/decimal"

// NotificationKind identifies the message template a notification maps to.
type NotificationKind string

const (
	NotifyDeposit          NotificationKind = "transaction.deposit"
	NotifyWithdrawal       NotificationKind = "transaction.withdrawal"
	NotifyTransferSent     NotificationKind = "transfer.sent"
	NotifyTransferReceived NotificationKind = "transfer.received"
	NotifyLoanRequested    NotificationKind = "loan.requested"
	NotifyLoanApproved     NotificationKind = "loan.approved"
	NotifyLoanPaid         NotificationKind = "loan.paid"
)

// Notification is the out-of-band message dispatched after a mutation commits.
// Delivery is fire-and-forget: a delivery failure never affects the committed
// financial mutation.
type Notification struct {
	UserID    string           `json:"userID"`
	AccountID string           `json:"accountID"`
	Amount    decimal.Decimal  `json:"amount"`
	Kind      NotificationKind `json:"kind"`
}
