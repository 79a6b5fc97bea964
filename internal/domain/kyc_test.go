package domain

import (
	"errors"
	"testing"
)

func TestCheckKyc(t *testing.T) {
	tests := []struct {
		status        KycStatus
		wantErr       bool
		wantRetryable bool
	}{
		{status: KycApproved},
		{status: KycPending, wantErr: true, wantRetryable: true},
		{status: KycNotStarted, wantErr: true, wantRetryable: true},
		{status: KycResubmissionRequired, wantErr: true, wantRetryable: true},
		{status: KycRejected, wantErr: true, wantRetryable: false},
		{status: "", wantErr: true, wantRetryable: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			err := CheckKyc(tt.status)

			if !tt.wantErr {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			var kerr *KycRequiredError
			if !errors.As(err, &kerr) {
				t.Fatalf("expected *KycRequiredError, got %v", err)
			}
			if !errors.Is(err, ErrKycRequired) {
				t.Errorf("expected error to wrap ErrKycRequired")
			}
			if kerr.Retryable != tt.wantRetryable {
				t.Errorf("retryable = %v, want %v", kerr.Retryable, tt.wantRetryable)
			}
		})
	}
}
