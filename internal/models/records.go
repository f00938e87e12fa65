package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PayrollRecord is one pay period for a worker. Append-only input.
type PayrollRecord struct {
	ID         string          `json:"id"`
	WorkerID   string          `json:"workerId"`
	PayPeriod  string          `json:"payPeriod"`
	GrossPay   decimal.Decimal `json:"grossPay"`
	NetPay     decimal.Decimal `json:"netPay"`
	DaysWorked int             `json:"daysWorked"`
	Timestamp  time.Time       `json:"timestamp"`
}

// Validate rejects malformed payroll records instead of defaulting fields.
func (p PayrollRecord) Validate() error {
	switch {
	case p.WorkerID == "":
		return fmt.Errorf("%w: payroll record has no worker", ErrInvalidRecord)
	case p.PayPeriod == "":
		return fmt.Errorf("%w: payroll record has no pay period", ErrInvalidRecord)
	case p.GrossPay.IsNegative():
		return fmt.Errorf("%w: gross pay %s is negative", ErrInvalidRecord, p.GrossPay)
	case p.NetPay.IsNegative():
		return fmt.Errorf("%w: net pay %s is negative", ErrInvalidRecord, p.NetPay)
	case !p.GrossPay.Equal(p.GrossPay.Round(2)) || !p.NetPay.Equal(p.NetPay.Round(2)):
		return fmt.Errorf("%w: pay %s/%s has fractional cents", ErrInvalidRecord, p.GrossPay, p.NetPay)
	case p.NetPay.GreaterThan(p.GrossPay):
		return fmt.Errorf("%w: net pay %s exceeds gross pay %s", ErrInvalidRecord, p.NetPay, p.GrossPay)
	case p.DaysWorked < 0 || p.DaysWorked > 31:
		return fmt.Errorf("%w: days worked %d out of range", ErrInvalidRecord, p.DaysWorked)
	}
	return nil
}

// ProductionRecord scores one task a worker performed. Append-only input.
type ProductionRecord struct {
	ID                string    `json:"id"`
	WorkerID          string    `json:"workerId"`
	Task              string    `json:"task"`
	ProductivityScore float64   `json:"productivityScore"`
	QualityScore      float64   `json:"qualityScore"`
	Timestamp         time.Time `json:"timestamp"`
}

// Validate rejects malformed production records.
func (p ProductionRecord) Validate() error {
	switch {
	case p.WorkerID == "":
		return fmt.Errorf("%w: production record has no worker", ErrInvalidRecord)
	case p.Task == "":
		return fmt.Errorf("%w: production record has no task", ErrInvalidRecord)
	case p.ProductivityScore < 0 || p.ProductivityScore > 1:
		return fmt.Errorf("%w: productivity score %.3f outside [0,1]", ErrInvalidRecord, p.ProductivityScore)
	case p.QualityScore < 0 || p.QualityScore > 1:
		return fmt.Errorf("%w: quality score %.3f outside [0,1]", ErrInvalidRecord, p.QualityScore)
	}
	return nil
}
