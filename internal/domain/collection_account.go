package domain

// CollectionAccount is the dedicated account a buyer pays into. Reference is
// what later payment events are matched against.
type CollectionAccount struct {
	Reference     string
	BankName      string
	AccountName   string
	AccountNumber string
}
