package loyalty

import (
	"sort"
	"time"

	"salon_backend/internal/models"
)

// CreditPolicy names the order in which eligible packages are debited when
// more than one covers the same service.
type CreditPolicy string

const (
	// SoonestExpiringFirst debits the package closest to expiry; packages
	// without an expiry date go last and list order breaks ties.
	SoonestExpiringFirst CreditPolicy = "soonest_expiring_first"
	// ListOrder debits packages in the order they were sold.
	ListOrder CreditPolicy = "list_order"
)

// Debit records one credit taken from one package instance.
type Debit struct {
	ServiceID   string `json:"service_id"`
	InstanceID  string `json:"instance_id"`
	PackageName string `json:"package_name"`
	Remaining   int    `json:"remaining"`
}

// Consumption is the outcome of ConsumeCredits.
type Consumption struct {
	Packages          models.PackageInstances `json:"-"`
	Debits            []Debit                 `json:"debits"`
	Utilized          []string                `json:"utilized_instance_ids"`
	UncoveredServices []string                `json:"uncovered_service_ids"`
}

// AnyConsumed reports whether at least one service was paid with a credit.
// When false the appointment earns a stamp instead.
func (c Consumption) AnyConsumed() bool {
	return len(c.Debits) > 0
}

// ConsumeCredits debits at most one credit per entry of serviceIDs from the
// client's eligible packages. The input slice is not modified; the returned
// Packages is a copy carrying the new balances and statuses.
func ConsumeCredits(pkgs models.PackageInstances, serviceIDs []string, today time.Time, policy CreditPolicy) Consumption {
	out := Consumption{Packages: pkgs.Clone()}
	order := eligibleOrder(out.Packages, today, policy)

	for _, serviceID := range serviceIDs {
		covered := false
		for _, idx := range order {
			inst := &out.Packages[idx]
			if inst.Status != models.PackageStatusActive {
				continue
			}
			entry := findCredit(inst, serviceID)
			if entry == nil || entry.RemainingQuantity <= 0 {
				continue
			}

			entry.RemainingQuantity--
			out.Debits = append(out.Debits, Debit{
				ServiceID:   serviceID,
				InstanceID:  inst.ID,
				PackageName: inst.PackageName,
				Remaining:   entry.RemainingQuantity,
			})
			if inst.AllConsumed() {
				inst.Status = models.PackageStatusUsed
				out.Utilized = append(out.Utilized, inst.ID)
			}
			covered = true
			break
		}
		if !covered {
			out.UncoveredServices = append(out.UncoveredServices, serviceID)
		}
	}
	return out
}

// MarkExpired flips active instances past their expiry date to Expirado and
// returns the ids it changed.
func MarkExpired(pkgs models.PackageInstances, today time.Time) []string {
	var changed []string
	for i := range pkgs {
		if pkgs[i].Status == models.PackageStatusActive && pkgs[i].IsExpired(today) {
			pkgs[i].Status = models.PackageStatusExpired
			changed = append(changed, pkgs[i].ID)
		}
	}
	return changed
}

func eligibleOrder(pkgs models.PackageInstances, today time.Time, policy CreditPolicy) []int {
	var idx []int
	for i := range pkgs {
		if pkgs[i].IsEligible(today) {
			idx = append(idx, i)
		}
	}
	if policy != SoonestExpiringFirst {
		return idx
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ea, eb := pkgs[idx[a]].ExpiryDate, pkgs[idx[b]].ExpiryDate
		switch {
		case ea == nil:
			return false
		case eb == nil:
			return true
		default:
			return models.DateOnly(*ea).Before(models.DateOnly(*eb))
		}
	})
	return idx
}

func findCredit(inst *models.ClientPackageInstance, serviceID string) *models.PackageServiceCredit {
	for i := range inst.Services {
		if inst.Services[i].ServiceID == serviceID {
			return &inst.Services[i]
		}
	}
	return nil
}
