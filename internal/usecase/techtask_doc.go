package usecase

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TechTaskDoc is the assembled content of a tech task before rendering.
type TechTaskDoc struct {
	ContractCode   string
	ContractStatus string
	FactoryName    string
	FactoryCode    string
	PaymentData    string
	BankData       string
	Lines          []TechTaskLine
}

type TechTaskLine struct {
	Ordinal       int
	Qty           int
	Region        string
	Delivery      string
	Price         decimal.NullDecimal
	Currency      string
	SKU           string
	CustomerModel string
	Requirements  string
	SupplierModel string
	FactoryName   string
	Accessories   []TechTaskAccessory
	Params        []TechTaskParam
	Methods       []TechTaskMethod
}

type TechTaskAccessory struct {
	Name       string
	PartNumber string
	Qty        int
}

type TechTaskParam struct {
	Name      string
	Required  bool
	Value     string
	UOM       string
	Tolerance string
	Condition string
}

type TechTaskMethod struct {
	Title string
	Text  string
}

// Render writes the document as markdown. Output depends only on the doc,
// so identical inputs give byte-identical content.
func (d *TechTaskDoc) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Tech Task: %s\n", d.ContractCode)
	fmt.Fprintf(&b, "Factory: %s (%s)\n", d.FactoryName, d.FactoryCode)
	fmt.Fprintf(&b, "Contract status: %s\n", orDash(d.ContractStatus))
	fmt.Fprintf(&b, "Payment: %s\n", orDash(d.PaymentData))
	fmt.Fprintf(&b, "Bank: %s\n", orDash(d.BankData))

	for _, l := range d.Lines {
		b.WriteString("\n")
		fmt.Fprintf(&b, "## Line %d\n", l.Ordinal)
		fmt.Fprintf(&b, "SKU: %s / %s | Qty: %d | Region: %s | Delivery: %s | Price: %s\n",
			l.SKU, l.CustomerModel, l.Qty, orDash(l.Region), orDash(l.Delivery), price(l.Price, l.Currency))
		fmt.Fprintf(&b, "Supplier model: %s (Factory: %s)\n", l.SupplierModel, l.FactoryName)

		b.WriteString("\n**Requirements**\n")
		b.WriteString(orDash(strings.TrimSpace(l.Requirements)))
		b.WriteString("\n")

		if len(l.Accessories) > 0 {
			b.WriteString("\n**Accessories**\n")
			for _, a := range l.Accessories {
				fmt.Fprintf(&b, "- %s (PN %s) x%d\n", a.Name, a.PartNumber, a.Qty)
			}
		}

		b.WriteString("\n**Parameters**\n")
		b.WriteString("| Parameter | Required | Value | UOM | Tolerance | Condition |\n")
		b.WriteString("| --- | --- | --- | --- | --- | --- |\n")
		for _, p := range l.Params {
			req := "no"
			if p.Required {
				req = "yes"
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
				cell(p.Name), req, cell(p.Value), cell(p.UOM), cell(p.Tolerance), cell(p.Condition))
		}

		if len(l.Methods) > 0 {
			b.WriteString("\n**Test Methods**\n")
			for _, m := range l.Methods {
				fmt.Fprintf(&b, "- %s: %s\n", m.Title, strings.TrimSpace(m.Text))
			}
		}
	}
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\n", " ")
	return orDash(strings.TrimSpace(s))
}

func price(p decimal.NullDecimal, currency string) string {
	if !p.Valid {
		return "-"
	}
	if currency == "" {
		return p.Decimal.StringFixed(2)
	}
	return p.Decimal.StringFixed(2) + " " + currency
}
