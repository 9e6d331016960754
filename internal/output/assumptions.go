package output

// DefaultAssumptions lists the withholding simplifications shown in the
// console report.
var DefaultAssumptions = []string{
	"Brackets apply to the period's taxable income directly; pay is not annualised",
	"Federal tax is computed once on total gross pay and never apportioned",
	"Social Security is uncapped unless the rule table sets a wage base",
	"Additional Medicare applies above the threshold regardless of filing status",
	"Reciprocity exempts non-residents only when the work jurisdiction lists the residence",
}
