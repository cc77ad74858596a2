package http

import (
	"strings"
	"testing"
)

type sampleReq struct {
	LoanID string  `validate:"required,hex32"`
	Amount float64 `validate:"required,gt=0,dec2"`
	Status string  `validate:"omitempty,oneof=pending active"`
	Score  int     `validate:"gte=300,lte=850"`
}

func TestValidator_CustomTags(t *testing.T) {
	cv := NewValidator()

	good := sampleReq{LoanID: strings.Repeat("a", 32), Amount: 3104.86, Status: "active", Score: 650}
	if err := cv.Validate(good); err != nil {
		t.Fatalf("valid struct rejected: %v", err)
	}

	cases := []struct {
		name    string
		req     sampleReq
		field   string
		message string
	}{
		{
			name:    "hex32 rejects uppercase",
			req:     sampleReq{LoanID: strings.Repeat("A", 32), Amount: 1, Score: 650},
			field:   "LoanID",
			message: "must be 32-char lowercase hex",
		},
		{
			name:    "hex32 rejects short ids",
			req:     sampleReq{LoanID: "abc123", Amount: 1, Score: 650},
			field:   "LoanID",
			message: "must be 32-char lowercase hex",
		},
		{
			name:    "dec2 rejects sub-penny amounts",
			req:     sampleReq{LoanID: strings.Repeat("a", 32), Amount: 10.123, Score: 650},
			field:   "Amount",
			message: "must have at most 2 decimal places",
		},
		{
			name:    "oneof rejects unknown status",
			req:     sampleReq{LoanID: strings.Repeat("a", 32), Amount: 1, Status: "paused", Score: 650},
			field:   "Status",
			message: "must be one of pending active",
		},
		{
			name:    "gte bounds credit score",
			req:     sampleReq{LoanID: strings.Repeat("a", 32), Amount: 1, Score: 200},
			field:   "Score",
			message: "must be greater than or equal to 300",
		},
		{
			name:    "lte bounds credit score",
			req:     sampleReq{LoanID: strings.Repeat("a", 32), Amount: 1, Score: 900},
			field:   "Score",
			message: "must be less than or equal to 850",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := cv.Validate(tc.req)
			if err == nil {
				t.Fatal("expected validation error")
			}
			fields := ToFieldErrors(err)
			if len(fields) != 1 {
				t.Fatalf("field errors = %+v, want exactly 1", fields)
			}
			if fields[0].Field != tc.field || fields[0].Message != tc.message {
				t.Fatalf("got %+v, want {%s %s}", fields[0], tc.field, tc.message)
			}
		})
	}
}

func TestValidator_Dec2AcceptsWholeAndPennies(t *testing.T) {
	cv := NewValidator()
	for _, amount := range []float64{1, 0.01, 85000, 7933.37, 111775.00} {
		req := sampleReq{LoanID: strings.Repeat("a", 32), Amount: amount, Score: 650}
		if err := cv.Validate(req); err != nil {
			t.Errorf("amount %v rejected: %v", amount, err)
		}
	}
}
