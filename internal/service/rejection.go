package service

import (
	"errors"
	"fmt"
)

// RejectionReason classifies why an allocation operation was refused.
type RejectionReason string

const (
	ReasonFitFailure     RejectionReason = "fit-failure"
	ReasonNotFound       RejectionReason = "not-found"
	ReasonInvalidRange   RejectionReason = "invalid-range"
	ReasonPalletAssigned RejectionReason = "pallet-assigned"
	ReasonNoPallet       RejectionReason = "no-pallet"
	ReasonInvalidInput   RejectionReason = "invalid-input"
)

// Rejection is returned by allocation operations that leave the state untouched.
// It is an expected outcome, not a failure of the service.
type Rejection struct {
	Reason    RejectionReason `json:"reason"`
	Operation string          `json:"operation"`
	PackageID string          `json:"package_id,omitempty"`
	ProductID string          `json:"product_id,omitempty"`
	// FillPercentage is the current fill of the target pallet for fit failures
	FillPercentage int        `json:"fill_percentage,omitempty"`
	Fit            *FitReport `json:"fit,omitempty"`
	Detail         string     `json:"detail,omitempty"`
}

func (r *Rejection) Error() string {
	msg := fmt.Sprintf("%s rejected: %s", r.Operation, r.Reason)
	if r.Detail != "" {
		msg += ": " + r.Detail
	}
	return msg
}

// AsRejection unwraps err into a Rejection.
func AsRejection(err error) (*Rejection, bool) {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}

// IsRejection reports whether err is a Rejection, optionally with one of reasons.
func IsRejection(err error, reasons ...RejectionReason) bool {
	rej, ok := AsRejection(err)
	if !ok {
		return false
	}
	if len(reasons) == 0 {
		return true
	}
	for _, reason := range reasons {
		if rej.Reason == reason {
			return true
		}
	}
	return false
}

func reject(op string, reason RejectionReason, detail string) *Rejection {
	return &Rejection{Operation: op, Reason: reason, Detail: detail}
}
