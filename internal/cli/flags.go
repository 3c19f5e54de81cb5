package cli

import "flag"

// ReconcileFlags are the flags for the reconcile command.
type ReconcileFlags struct {
	File       string
	Registry   string
	ConfigFile string
	SkipSearch bool
	Verbose    bool
}

// ParseReconcileFlags parses reconcile flags from the command line.
func ParseReconcileFlags() *ReconcileFlags {
	flags := &ReconcileFlags{}
	flag.StringVar(&flags.File, "file", "", "Bank statement file to reconcile (required)")
	flag.StringVar(&flags.Registry, "registry", "", "Registry CSV export (overrides config)")
	flag.StringVar(&flags.ConfigFile, "config", "", "Configuration file path")
	flag.BoolVar(&flags.SkipSearch, "skip-search", false, "Disable the deep-search recovery hook")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")
	flag.Parse()
	return flags
}

// ServeFlags holds the CLI flags for the serve command.
type ServeFlags struct {
	Port       int
	ConfigFile string
	Verbose    bool
}

// ParseServeFlags parses command line flags for the serve command.
func ParseServeFlags() *ServeFlags {
	flags := &ServeFlags{}
	flag.IntVar(&flags.Port, "port", 8080, "Port to listen on")
	flag.StringVar(&flags.ConfigFile, "config", "", "Configuration file path")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")
	flag.Parse()
	return flags
}

// CheckDuplicateFlags holds the flags for the check-duplicate command.
type CheckDuplicateFlags struct {
	Registry    string
	ConfigFile  string
	Number      string
	IssueDate   string
	Amount      float64
	Currency    string
	SellerName  string
	SellerTaxID string
}

// ParseCheckDuplicateFlags parses check-duplicate flags.
func ParseCheckDuplicateFlags() *CheckDuplicateFlags {
	flags := &CheckDuplicateFlags{}
	flag.StringVar(&flags.Registry, "registry", "", "Registry CSV export (overrides config)")
	flag.StringVar(&flags.ConfigFile, "config", "", "Configuration file path")
	flag.StringVar(&flags.Number, "number", "", "Candidate invoice number")
	flag.StringVar(&flags.IssueDate, "date", "", "Candidate issue date")
	flag.Float64Var(&flags.Amount, "amount", 0, "Candidate amount")
	flag.StringVar(&flags.Currency, "currency", "PLN", "Candidate currency")
	flag.StringVar(&flags.SellerName, "seller", "", "Candidate seller name")
	flag.StringVar(&flags.SellerTaxID, "seller-tax-id", "", "Candidate seller tax ID")
	flag.Parse()
	return flags
}
