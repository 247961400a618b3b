package pubchem

import "strings"

// commonFormulas maps Hill-notation formulas to the way they are usually
// written in a lab.
var commonFormulas = map[string]string{
	"ClH":    "HCl",
	"H2O4S":  "H2SO4",
	"H4N2":   "N2H4",
	"H3N":    "NH3",
	"H4O2S":  "H2SO4",
	"HNaO":   "NaOH",
	"HKO":    "KOH",
	"H3O4P":  "H3PO4",
	"H2O":    "H2O",
	"H2O2":   "H2O2",
	"CH4":    "CH4",
	"CH2O2":  "HCOOH",
	"C2H4O2": "CH3COOH",
	"C6H8O7": "C6H8O7",
	"ClNa":   "NaCl",
	"IK":     "KI",
	"ClK":    "KCl",
	"O2S":    "SO2",
	"O3S":    "SO3",
}

// FormatFormula converts a Hill-notation formula to common notation. An
// empty formula yields name, or "Unknown" when name is empty too.
func FormatFormula(formula, name string) string {
	if formula == "" {
		if name == "" {
			return "Unknown"
		}
		return name
	}
	if common, ok := commonFormulas[formula]; ok {
		return common
	}
	// Inorganic acids: Hill order puts H last (BrH -> HBr).
	if strings.HasSuffix(formula, "H") && !strings.Contains(formula, "C") {
		return "H" + strings.TrimSuffix(formula, "H")
	}
	return formula
}
