package models

// FlaggedTransactionsRequest is the query contract for the flagged
// transactions endpoint.
type FlaggedTransactionsRequest struct {
	Limit int `query:"limit" json:"limit" default:"100" validate:"gt=0,lte=10000"`
}

// HighRiskRequest is the query contract for the high-risk customers endpoint.
type HighRiskRequest struct {
	Limit int `query:"limit" json:"limit" default:"100" validate:"gt=0,lte=10000"`
}
