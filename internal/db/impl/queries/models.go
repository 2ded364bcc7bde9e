package queries

type Profile struct {
	Address string
	Fid     int64
	Name    string
	Email   string
	Created int64
	Updated int64
}

type Social struct {
	Address string
	Network string
	Handle  string
}

type Revision struct {
	ID      int64
	Address string
	Patch   string
	Created int64
}

type Donation struct {
	ID              string
	TxHash          string
	Donor           string
	Recipient       string
	Amount          string
	RecipientAmount string
	Fee             string
	BlockNumber     int64
	Timestamp       int64
}
