package models

const (
	StatusUpcoming  = "upcoming"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

const (
	ReasonVisitBonus    = "visit_bonus"
	ReasonReferralBonus = "referral_bonus"
	ReasonReviewBonus   = "review_bonus"
	ReasonRedemption    = "redemption"
	ReasonReversal      = "reversal"
)

const (
	DateFormat = "2006-01-02"
	SlotFormat = "15:04"
)

const (
	// SlotStepMinutes шаг сетки записи
	SlotStepMinutes = 15

	// DefaultPointsDivisor бонусные баллы: 1 балл за каждые 100 единиц чека
	DefaultPointsDivisor = 100

	// DefaultMaxBookingDays максимальный горизонт записи
	DefaultMaxBookingDays = 90

	// DefaultBonusHistoryLimit количество событий в истории бонусов
	DefaultBonusHistoryLimit = 50

	// DefaultOperatorListLimit размер списка заявок для оператора
	DefaultOperatorListLimit = 100

	// CatalogCacheTTL время жизни кэша каталога в секундах
	CatalogCacheTTL = 30 * 60
)

// ValidStatus reports whether s is one of the known booking statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusUpcoming, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ValidReason reports whether r is one of the known loyalty reasons.
func ValidReason(r string) bool {
	switch r {
	case ReasonVisitBonus, ReasonReferralBonus, ReasonReviewBonus, ReasonRedemption, ReasonReversal:
		return true
	}
	return false
}
