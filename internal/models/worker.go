package models

import "time"

// WorkerStatus is the only mutable attribute of a Worker. Registration
// sets it to active.
type WorkerStatus string

const WorkerStatusActive WorkerStatus = "active"

// Worker represents a registered farmworker
type Worker struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Email      string       `json:"email,omitempty"`
	Phone      string       `json:"phone,omitempty"`
	NationalID string       `json:"nationalId,omitempty"` // Encrypted at rest
	StartDate  time.Time    `json:"startDate"`
	Status     WorkerStatus `json:"status"`
	CreatedAt  time.Time    `json:"createdAt"`
}

// EmploymentMonths returns the number of whole calendar months between the
// worker's start date and now. A partial month does not count.
func (w Worker) EmploymentMonths(now time.Time) int {
	if now.Before(w.StartDate) {
		return 0
	}
	months := (now.Year()-w.StartDate.Year())*12 + int(now.Month()-w.StartDate.Month())
	if now.Day() < w.StartDate.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}
