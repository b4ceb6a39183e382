package valueobject

import "github.com/Studio-Zurich/fix-app-sub000/internal/pkg/apperror"

type ReportStatus string

const (
	ReportStatusOpen       ReportStatus = "open"
	ReportStatusInProgress ReportStatus = "in_progress"
	ReportStatusResolved   ReportStatus = "resolved"
	ReportStatusRejected   ReportStatus = "rejected"
)

func (s ReportStatus) IsValid() bool {
	switch s {
	case ReportStatusOpen, ReportStatusInProgress, ReportStatusResolved, ReportStatusRejected:
		return true
	}
	return false
}

func (s ReportStatus) CanTransitionTo(newStatus ReportStatus) bool {
	transitions := map[ReportStatus][]ReportStatus{
		ReportStatusOpen:       {ReportStatusInProgress, ReportStatusResolved, ReportStatusRejected},
		ReportStatusInProgress: {ReportStatusResolved, ReportStatusRejected, ReportStatusOpen},
		ReportStatusResolved:   {ReportStatusInProgress},
		ReportStatusRejected:   {},
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == newStatus {
			return true
		}
	}
	return false
}

func NewReportStatus(status string) (ReportStatus, error) {
	s := ReportStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус сообщения")
	}
	return s, nil
}

func AllReportStatuses() []ReportStatus {
	return []ReportStatus{ReportStatusOpen, ReportStatusInProgress, ReportStatusResolved, ReportStatusRejected}
}
