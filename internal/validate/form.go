package validate

// Field names used as keys in Errors.
const (
	FieldSupplier              = "supplier"
	FieldPhone                 = "phone"
	FieldAmount                = "amount"
	FieldTerminal              = "terminal"
	FieldTransactionalPassword = "transactionalPassword"
)

// Form is the raw top-up form as typed by the operator.
type Form struct {
	Supplier              string `json:"supplier"`
	Phone                 string `json:"phone"`
	Amount                string `json:"amount"`
	Terminal              string `json:"terminal"`
	TransactionalPassword string `json:"transactionalPassword"`
}

// Errors maps a field name to its failed Result. An empty map means the form
// passed every rule.
type Errors map[string]Result

// TopUpForm runs every field rule and collects the failures.
func TopUpForm(f Form) Errors {
	errs := Errors{}
	check := func(field string, r Result) {
		if !r.OK {
			errs[field] = r
		}
	}
	check(FieldSupplier, Required("Supplier", f.Supplier))
	check(FieldPhone, Phone(f.Phone))
	check(FieldAmount, Amount(ParseAmount(f.Amount)))
	check(FieldTerminal, Required("Terminal", f.Terminal))
	check(FieldTransactionalPassword, Required("Transactional password", f.TransactionalPassword))
	return errs
}
