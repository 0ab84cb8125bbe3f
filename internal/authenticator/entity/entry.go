package entity

// Entry is a labelled third-party TOTP secret. Names are not unique, ID is.
// Owner is the account that stored it over HTTP; entries added from the CLI
// have none.
type Entry struct {
	ID     string
	Name   string
	Secret string
	Owner  string
}
