package projection

import (
	"finmodel/pkg/core/assumption"
	"finmodel/pkg/core/modelerr"
)

// WorkingCapitalRatios size the working capital accounts.
type WorkingCapitalRatios struct {
	ARPctRevenue     float64
	InventoryPctCOGS float64
	APPctCOGS        float64
}

// WorkingCapitalRatiosFrom reads the ratios, defaulting absent ones.
func WorkingCapitalRatiosFrom(r *assumption.Reader) WorkingCapitalRatios {
	return WorkingCapitalRatios{
		ARPctRevenue:     r.Ratio(assumption.ARPctRevenue),
		InventoryPctCOGS: r.Ratio(assumption.InventoryPctCOGS),
		APPctCOGS:        r.Ratio(assumption.APPctCOGS),
	}
}

// WorkingCapital derives receivables, inventory and payables row by row.
// There is no cross-year dependency.
func WorkingCapital(is []IncomeStatementRow, ratios WorkingCapitalRatios) ([]WorkingCapitalRow, error) {
	if len(is) == 0 {
		return nil, modelerr.Invalid("income_statement", "no rows to derive working capital from")
	}
	rows := make([]WorkingCapitalRow, len(is))
	for i, r := range is {
		wc := WorkingCapitalRow{
			Year:               r.Year,
			AccountsReceivable: r.Revenue * ratios.ARPctRevenue,
			Inventory:          r.COGS * ratios.InventoryPctCOGS,
			AccountsPayable:    r.COGS * ratios.APPctCOGS,
		}
		wc.NetWorkingCapital = wc.AccountsReceivable + wc.Inventory - wc.AccountsPayable
		rows[i] = wc
	}
	return rows, nil
}
