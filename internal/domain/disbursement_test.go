package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisbursement_Validate(t *testing.T) {
	valid := Disbursement{
		ID:          uuid.New(),
		PhaseID:     uuid.New(),
		RequestID:   uuid.New(),
		RequestType: RequestTypeOperation,
		Amount:      decimal.NewFromInt(5_000_000),
		ProofRef:    "uploads/proofs/transfer-0192.pdf",
		Status:      DisbursementStatusCompleted,
		ReceiverID:  uuid.New(),
	}

	tests := []struct {
		name    string
		mutate  func(d *Disbursement)
		wantErr string
	}{
		{name: "valid", mutate: func(d *Disbursement) {}},
		{
			name:    "missing request reference",
			mutate:  func(d *Disbursement) { d.RequestID = uuid.Nil },
			wantErr: "must reference a request",
		},
		{
			name:    "bad request type",
			mutate:  func(d *Disbursement) { d.RequestType = "DONATION" },
			wantErr: "request type must be OPERATION or INGREDIENT",
		},
		{
			name:    "non-positive amount",
			mutate:  func(d *Disbursement) { d.Amount = decimal.Zero },
			wantErr: "amount must be positive",
		},
		{
			name:    "missing proof",
			mutate:  func(d *Disbursement) { d.ProofRef = "" },
			wantErr: "proof",
		},
		{
			name:    "bad status",
			mutate:  func(d *Disbursement) { d.Status = "SETTLED" },
			wantErr: "status must be PENDING, COMPLETED, or FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			tt.mutate(&d)
			err := d.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
