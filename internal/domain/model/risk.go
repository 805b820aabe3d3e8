package model

// Уровни риска заявки по скорингу API (0–100, чем выше, тем надёжнее клиент).
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Пороги скоринга для уровней риска.
const (
	lowRiskMinScore    = 75
	mediumRiskMinScore = 55
)

// RiskLevel возвращает уровень риска по скорингу заявки.
func RiskLevel(score float64) string {
	switch {
	case score >= lowRiskMinScore:
		return RiskLow
	case score >= mediumRiskMinScore:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// Статусы заявки в справочнике credit-statuses.
const (
	CreditStatusPending  uint = 1
	CreditStatusApproved uint = 2
	CreditStatusRejected uint = 3
	CreditStatusInReview uint = 4
)

// CreditStatusLabel возвращает подпись статуса заявки для UI.
// Неизвестный статус отображается как «Pendiente».
func CreditStatusLabel(statusID uint) string {
	switch statusID {
	case CreditStatusApproved:
		return "Aprobado"
	case CreditStatusRejected:
		return "Rechazado"
	case CreditStatusInReview:
		return "En estudio"
	default:
		return "Pendiente"
	}
}
