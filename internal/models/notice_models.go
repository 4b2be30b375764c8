package models

// NoticeLevel mirrors the toast levels of the front desk UI.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
)

// Notice codes returned alongside successful operations.
const (
	NoticeStampAwarded        = "stamp_awarded"
	NoticeCardCompleted       = "card_completed"
	NoticeStampReverted       = "stamp_reverted"
	NoticeMimoRedeemed        = "mimo_redeemed"
	NoticeCardReset           = "card_reset"
	NoticeClientNotFound      = "client_not_found"
	NoticePackageCreditUsed   = "package_credit_used"
	NoticePackageUtilized     = "package_utilized"
	NoticeIncomeRecorded      = "income_recorded"
	NoticeExpenseRecorded     = "expense_recorded"
	NoticeOccurrenceSkipped   = "occurrence_skipped"
	NoticeServiceNotInCatalog = "service_not_in_catalog"
	NoticePartialReversal     = "partial_reversal"
	NoticeMimosOverdrawn      = "mimos_overdrawn"
)

// Notice is a non-blocking message surfaced to staff after an operation.
// Data-integrity warnings travel as notices, never as errors.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
}

// NewNotice builds a Notice.
func NewNotice(level NoticeLevel, code, message string) Notice {
	return Notice{Level: level, Code: code, Message: message}
}
