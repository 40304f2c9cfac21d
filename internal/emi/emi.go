// Package emi computes equated monthly installments for the loan pages.
package emi

import "math"

// MaxTenureYears bounds the loan term the calculator accepts.
const MaxTenureYears = 50

// Monthly returns the installment for principal p at annual rate r percent
// over t years. Non-positive principal, rate or tenure yields 0.
func Monthly(p, r, t float64) float64 {
	monthlyRate := r / 12 / 100
	n := t * 12
	if p <= 0 || monthlyRate <= 0 || n <= 0 {
		return 0
	}
	growth := math.Pow(1+monthlyRate, n)
	if math.IsInf(growth, 1) {
		return p * monthlyRate
	}
	return p * monthlyRate * growth / (growth - 1)
}

// Round2 rounds to paise for display.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Installment is one row of an amortization table.
type Installment struct {
	Month     int     `json:"month"`
	Payment   float64 `json:"payment"`
	Principal float64 `json:"principal"`
	Interest  float64 `json:"interest"`
	Balance   float64 `json:"balance"`
}

// Plan is the repayment summary shown next to the calculator.
type Plan struct {
	EMI           float64       `json:"emi"`
	TotalPayment  float64       `json:"totalPayment"`
	TotalInterest float64       `json:"totalInterest"`
	Schedule      []Installment `json:"schedule,omitempty"`
}

// Schedule builds the month by month table. Tenure is rounded to whole
// months; the last row absorbs floating point drift so the balance ends at 0.
// Tenures beyond MaxTenureYears yield a zero plan.
func Schedule(p, r, t float64) Plan {
	if t > MaxTenureYears {
		return Plan{}
	}
	payment := Monthly(p, r, t)
	months := int(math.Round(t * 12))
	if payment == 0 || months <= 0 {
		return Plan{}
	}

	monthlyRate := r / 12 / 100
	balance := p
	rows := make([]Installment, 0, months)
	var totalInterest float64

	for m := 1; m <= months; m++ {
		interest := balance * monthlyRate
		principal := payment - interest
		if m == months {
			principal = balance
		}
		balance -= principal
		totalInterest += interest

		rows = append(rows, Installment{
			Month:     m,
			Payment:   Round2(principal + interest),
			Principal: Round2(principal),
			Interest:  Round2(interest),
			Balance:   Round2(math.Max(balance, 0)),
		})
	}

	return Plan{
		EMI:           Round2(payment),
		TotalPayment:  Round2(p + totalInterest),
		TotalInterest: Round2(totalInterest),
		Schedule:      rows,
	}
}

// Summary is Schedule without the table.
func Summary(p, r, t float64) Plan {
	plan := Schedule(p, r, t)
	plan.Schedule = nil
	return plan
}
