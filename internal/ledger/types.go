package ledger

// Account is a ledger account as exposed by the budget server.
type Account struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CategoryGroup is a named group of categories. Income and expense
// categories live under separate groups.
type CategoryGroup struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsIncome bool   `json:"is_income"`
}

// Category is a budget category. Name plus income flag identifies it.
type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	GroupID  string `json:"group_id"`
	IsIncome bool   `json:"is_income"`
}

// Payee is a counterparty. Payees the server created for account-to-account
// transfers carry the linked account in TransferAccountID.
type Payee struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	TransferAccountID string `json:"transfer_account_id,omitempty"`
}

// Posting is one side of a ledger entry, the unit of import. PayeeID and
// PayeeName are mutually exclusive: a resolved payee reference or free text.
type Posting struct {
	ID                    string  `json:"id"`
	AccountID             string  `json:"account_id"`
	Date                  string  `json:"date"`
	Amount                int64   `json:"amount"`
	CategoryID            *string `json:"category_id"`
	PayeeID               *string `json:"payee_id,omitempty"`
	PayeeName             string  `json:"payee_name,omitempty"`
	Note                  string  `json:"note,omitempty"`
	ImportID              string  `json:"import_id"`
	Cleared               bool    `json:"cleared"`
	TransferCounterpartID *string `json:"transfer_id,omitempty"`
}

// ImportResult is the server's tally for one import call.
type ImportResult struct {
	Added   int      `json:"added"`
	Updated int      `json:"updated"`
	Errors  []string `json:"errors"`
}
