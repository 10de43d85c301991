package reports

import (
	"sort"
	"time"

	"opsflow/internal/domain/compliance"
	"opsflow/internal/domain/inductions"
	"opsflow/internal/domain/licenses"
)

const (
	KindLicense   = "license"
	KindInduction = "induction"
)

type Summary struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"byStatus"`
}

// Item is one dated record that is expired or due within the threshold.
type Item struct {
	Kind            string    `json:"kind"`
	ID              string    `json:"id"`
	EmployeeID      string    `json:"employeeId"`
	EmployeeName    string    `json:"employeeName"`
	Name            string    `json:"name"`
	Status          string    `json:"status"`
	ExpiryDate      time.Time `json:"expiryDate"`
	DaysUntilExpiry int       `json:"daysUntilExpiry"`
}

type ComplianceReport struct {
	GeneratedAt   time.Time `json:"generatedAt"`
	ThresholdDays int       `json:"thresholdDays"`
	Licenses      Summary   `json:"licenses"`
	Inductions    Summary   `json:"inductions"`
	Expiring      []Item    `json:"expiring"`
	Expired       []Item    `json:"expired"`
}

// BuildCompliance summarizes records whose Status and DaysUntilExpiry are already derived.
func BuildCompliance(lics []licenses.License, inds []inductions.Induction, policy compliance.Policy, now time.Time) *ComplianceReport {
	report := &ComplianceReport{
		GeneratedAt:   now.UTC(),
		ThresholdDays: policy.Threshold(),
		Licenses:      Summary{ByStatus: map[string]int{}},
		Inductions:    Summary{ByStatus: map[string]int{}},
		Expiring:      []Item{},
		Expired:       []Item{},
	}
	for _, status := range licenses.Statuses {
		report.Licenses.ByStatus[status] = 0
	}
	for _, status := range inductions.FilterStatuses {
		report.Inductions.ByStatus[status] = 0
	}

	for _, l := range lics {
		report.Licenses.Total++
		report.Licenses.ByStatus[l.Status]++
		if l.ExpiryDate != nil && l.DaysUntilExpiry != nil {
			report.add(Item{
				Kind:            KindLicense,
				ID:              l.ID,
				EmployeeID:      l.EmployeeID,
				EmployeeName:    l.EmployeeName,
				Name:            l.Name,
				Status:          l.Status,
				ExpiryDate:      *l.ExpiryDate,
				DaysUntilExpiry: *l.DaysUntilExpiry,
			})
		}
	}
	for _, in := range inds {
		report.Inductions.Total++
		report.Inductions.ByStatus[in.Status]++
		if in.ExpiryDate != nil && in.DaysUntilExpiry != nil {
			report.add(Item{
				Kind:            KindInduction,
				ID:              in.ID,
				EmployeeID:      in.EmployeeID,
				EmployeeName:    in.EmployeeName,
				Name:            in.Name,
				Status:          in.Status,
				ExpiryDate:      *in.ExpiryDate,
				DaysUntilExpiry: *in.DaysUntilExpiry,
			})
		}
	}

	byDue := func(items []Item) func(i, j int) bool {
		return func(i, j int) bool {
			if items[i].DaysUntilExpiry != items[j].DaysUntilExpiry {
				return items[i].DaysUntilExpiry < items[j].DaysUntilExpiry
			}
			return items[i].Name < items[j].Name
		}
	}
	sort.SliceStable(report.Expiring, byDue(report.Expiring))
	sort.SliceStable(report.Expired, byDue(report.Expired))
	return report
}

func (r *ComplianceReport) add(item Item) {
	switch {
	case item.DaysUntilExpiry < 0:
		r.Expired = append(r.Expired, item)
	case item.DaysUntilExpiry <= r.ThresholdDays:
		r.Expiring = append(r.Expiring, item)
	}
}
