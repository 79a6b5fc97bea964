package domain

import "time"

// KycStatus is the verification state reported by the identity provider.
type KycStatus string

const (
	KycNotStarted           KycStatus = "not_started"
	KycPending              KycStatus = "pending"
	KycApproved             KycStatus = "approved"
	KycRejected             KycStatus = "rejected"
	KycResubmissionRequired KycStatus = "resubmission_required"
)

// IsValid reports whether s is a known status.
func (s KycStatus) IsValid() bool {
	switch s {
	case KycNotStarted, KycPending, KycApproved, KycRejected, KycResubmissionRequired:
		return true
	}
	return false
}

// KycRecord is the last status notified for a user.
type KycRecord struct {
	UserID    string
	Status    KycStatus
	UpdatedAt time.Time
}

// CheckKyc passes only approved users. Rejected users are blocked without a
// retry path; every other status can still progress to approval.
func CheckKyc(status KycStatus) error {
	switch status {
	case KycApproved:
		return nil
	case KycRejected:
		return &KycRequiredError{Status: status, Retryable: false}
	case "":
		return &KycRequiredError{Status: KycNotStarted, Retryable: true}
	default:
		return &KycRequiredError{Status: status, Retryable: true}
	}
}
