// Package export shapes reports and transaction lists into the rows the
// spreadsheet/PDF exporters consume. The byte layout of those files is an
// external concern; this package only guarantees correctly-shaped data.
package export

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/qahwahub/cafe-ledger/pkg/ledger"
)

// labelsFile is the YAML shape of a label override file.
type labelsFile struct {
	Categories map[string]string `yaml:"categories"`
	Kinds      map[string]string `yaml:"kinds"`
	Directions map[string]string `yaml:"directions"`
	Summary    map[string]string `yaml:"summary"`
}

// Summary row label keys accepted in the summary section.
const (
	SummaryPeriodFrom    = "period_from"
	SummaryPeriodTo      = "period_to"
	SummaryTotalSales    = "total_sales"
	SummaryTotalExpenses = "total_expenses"
	SummaryNetProfit     = "net_profit"
	SummaryBankBalance   = "bank_balance"
)

// Labels maps category slugs, event kinds, directions and summary row keys to
// display labels.
type Labels struct {
	categories map[string]string
	kinds      map[string]string
	directions map[string]string
	summary    map[string]string
}

// DefaultLabels returns the built-in English labels.
func DefaultLabels() *Labels {
	return &Labels{
		categories: map[string]string{
			string(ledger.CategoryRent):        "Rent",
			string(ledger.CategorySalaries):    "Salaries",
			string(ledger.CategoryPurchases):   "Purchases (raw materials)",
			string(ledger.CategoryUtilities):   "Utilities",
			string(ledger.CategoryMaintenance): "Maintenance",
			string(ledger.CategoryMarketing):   "Marketing",
			string(ledger.CategoryOther):       "Other",
			string(ledger.CategoryUnspecified): "Unspecified",
		},
		kinds: map[string]string{
			string(ledger.KindSale):               "Sale",
			string(ledger.KindExpense):            "Expense",
			string(ledger.KindBankTransaction):    "Bank transaction",
			string(ledger.KindCapitalTransaction): "Capital transaction",
			string(ledger.KindPartnerShare):       "Partner share",
			string(ledger.KindProjectCost):        "Project cost",
			string(ledger.KindTaxPayment):         "Tax payment",
		},
		directions: map[string]string{
			ledger.DirectionDeposit:    "Deposit",
			ledger.DirectionWithdrawal: "Withdrawal",
			ledger.DirectionInitial:    "Initial capital",
			ledger.DirectionAddition:   "Capital addition",
			ledger.TaxVAT:              "VAT",
			ledger.TaxZakat:            "Zakat",
		},
		summary: map[string]string{
			SummaryPeriodFrom:    "Period from",
			SummaryPeriodTo:      "Period to",
			SummaryTotalSales:    "Total sales",
			SummaryTotalExpenses: "Total expenses",
			SummaryNetProfit:     "Net profit",
			SummaryBankBalance:   "Bank balance (current)",
		},
	}
}

// LoadLabels reads a YAML label file and overlays it on the defaults, so a
// partial file (for example translations for categories only) is valid.
func LoadLabels(path string) (*Labels, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read labels file: %w", err)
	}

	var file labelsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	labels := DefaultLabels()
	for k, v := range file.Categories {
		labels.categories[k] = v
	}
	for k, v := range file.Kinds {
		labels.kinds[k] = v
	}
	for k, v := range file.Directions {
		labels.directions[k] = v
	}
	for k, v := range file.Summary {
		labels.summary[k] = v
	}
	return labels, nil
}

// Category returns the display label for a category slug.
func (l *Labels) Category(c ledger.ExpenseCategory) string {
	if label, ok := l.categories[string(c)]; ok {
		return label
	}
	return string(c)
}

// Kind returns the display label for an event kind.
func (l *Labels) Kind(k ledger.EventKind) string {
	if label, ok := l.kinds[string(k)]; ok {
		return label
	}
	return string(k)
}

// Direction returns the display label for a movement direction.
func (l *Labels) Direction(d string) string {
	if label, ok := l.directions[d]; ok {
		return label
	}
	return d
}

// Summary returns the display label for a summary row key.
func (l *Labels) Summary(key string) string {
	if label, ok := l.summary[key]; ok {
		return label
	}
	return key
}
