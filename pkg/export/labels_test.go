package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/qahwahub/cafe-ledger/pkg/ledger"
)

func TestDefaultLabels(t *testing.T) {
	l := DefaultLabels()

	if got := l.Category(ledger.CategoryRent); got != "Rent" {
		t.Errorf("Category(rent) = %q, want Rent", got)
	}
	if got := l.Category(ledger.CategoryUnspecified); got != "Unspecified" {
		t.Errorf("Category(unspecified) = %q, want Unspecified", got)
	}
	if got := l.Kind(ledger.KindPartnerShare); got != "Partner share" {
		t.Errorf("Kind(partner_share) = %q", got)
	}
	if got := l.Direction(ledger.TaxZakat); got != "Zakat" {
		t.Errorf("Direction(zakat) = %q", got)
	}
	if got := l.Summary(SummaryNetProfit); got != "Net profit" {
		t.Errorf("Summary(net_profit) = %q", got)
	}

	// Unknown slugs fall through to the slug itself.
	if got := l.Category("deliveries"); got != "deliveries" {
		t.Errorf("Category(unknown) = %q, want slug", got)
	}
	if got := l.Direction("sideways"); got != "sideways" {
		t.Errorf("Direction(unknown) = %q, want slug", got)
	}
}

func TestLoadLabels_PartialOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.yaml")
	content := `categories:
  rent: "Miete"
directions:
  deposit: "Einzahlung"
summary:
  net_profit: "Reingewinn"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write labels file: %v", err)
	}

	l, err := LoadLabels(path)
	if err != nil {
		t.Fatalf("LoadLabels failed: %v", err)
	}

	if got := l.Category(ledger.CategoryRent); got != "Miete" {
		t.Errorf("overridden Category(rent) = %q, want Miete", got)
	}
	if got := l.Direction(ledger.DirectionDeposit); got != "Einzahlung" {
		t.Errorf("overridden Direction(deposit) = %q, want Einzahlung", got)
	}
	if got := l.Summary(SummaryNetProfit); got != "Reingewinn" {
		t.Errorf("overridden Summary(net_profit) = %q, want Reingewinn", got)
	}
	// Untouched entries keep the defaults.
	if got := l.Category(ledger.CategorySalaries); got != "Salaries" {
		t.Errorf("Category(salaries) = %q, want default", got)
	}
	if got := l.Summary(SummaryTotalSales); got != "Total sales" {
		t.Errorf("Summary(total_sales) = %q, want default", got)
	}
	if got := l.Kind(ledger.KindSale); got != "Sale" {
		t.Errorf("Kind(sale) = %q, want default", got)
	}
}

func TestLoadLabels_Errors(t *testing.T) {
	if _, err := LoadLabels(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadLabels accepted missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("categories: [not a map"), 0o644); err != nil {
		t.Fatalf("write labels file: %v", err)
	}
	if _, err := LoadLabels(path); err == nil {
		t.Error("LoadLabels accepted malformed YAML")
	}
}
