package statement

// amountMode determines how amounts are extracted from a row.
type amountMode int

const (
	// amountSingle means one signed column (e.g. "Amount" with value "-10.00").
	amountSingle amountMode = iota
	// amountSplit means separate debit and credit columns.
	amountSplit
)

// numberFormat is the decimal convention of the amount cells.
type numberFormat int

const (
	// numberUS uses "," for thousands and "." for decimals: "1,234.56".
	numberUS numberFormat = iota
	// numberEuropean uses "." for thousands and "," for decimals: "1.234,56".
	numberEuropean
)

// Profile describes the column layout of a bank CSV export.
// Supporting another bank is adding a Profile to the profiles slice.
type Profile struct {
	Name       string
	Comma      rune
	DateLayout string
	Number     numberFormat
	DateCol    string
	DescCol    string
	AmountMode amountMode
	AmountCol  string // used when AmountMode == amountSingle
	DebitCol   string // used when AmountMode == amountSplit
	CreditCol  string // used when AmountMode == amountSplit
}

// requiredCols returns the column names that must be present for this profile to match.
func (p Profile) requiredCols() []string {
	cols := []string{p.DateCol, p.DescCol}

	switch p.AmountMode {
	case amountSingle:
		cols = append(cols, p.AmountCol)
	case amountSplit:
		cols = append(cols, p.DebitCol, p.CreditCol)
	}

	return cols
}

// profiles is the ordered list of export formats tried during auto-detection.
// More specific profiles come first to avoid false matches.
var profiles = []Profile{
	{
		Name:       "card",
		Comma:      ',',
		DateLayout: "01/02/2006",
		Number:     numberUS,
		DateCol:    "Transaction Date",
		DescCol:    "Description",
		AmountMode: amountSplit,
		DebitCol:   "Debit",
		CreditCol:  "Credit",
	},
	{
		Name:       "checking",
		Comma:      ',',
		DateLayout: "01/02/2006",
		Number:     numberUS,
		DateCol:    "Date",
		DescCol:    "Description",
		AmountMode: amountSingle,
		AmountCol:  "Amount",
	},
	{
		Name:       "cgd-cartao",
		Comma:      ';',
		DateLayout: "02-01-2006",
		Number:     numberEuropean,
		DateCol:    "Data",
		DescCol:    "Descrição",
		AmountMode: amountSplit,
		DebitCol:   "Débito",
		CreditCol:  "Crédito",
	},
	{
		Name:       "cgd-extrato",
		Comma:      ';',
		DateLayout: "02-01-2006",
		Number:     numberEuropean,
		DateCol:    "Data mov.",
		DescCol:    "Descrição",
		AmountMode: amountSingle,
		AmountCol:  "Movimento",
	},
	{
		Name:       "cgd-conta",
		Comma:      ';',
		DateLayout: "02-01-2006",
		Number:     numberEuropean,
		DateCol:    "Data mov.",
		DescCol:    "Descrição",
		AmountMode: amountSingle,
		AmountCol:  "Montante",
	},
}
