package models

// TransactionRow is one financial transfer after cleaning. Field names follow
// the PaySim column set the loader validates against.
type TransactionRow struct {
	Step           int     `json:"step"`
	Type           string  `json:"type"`
	Amount         float64 `json:"amount"`
	NameOrig       string  `json:"nameOrig"`
	OldBalanceOrig float64 `json:"oldbalanceOrg"`
	NewBalanceOrig float64 `json:"newbalanceOrig"`
	NameDest       string  `json:"nameDest"`
	OldBalanceDest float64 `json:"oldbalanceDest"`
	NewBalanceDest float64 `json:"newbalanceDest"`

	// Ground-truth labels carried through untouched; scoring never reads them.
	IsFraud        int `json:"isFraud"`
	IsFlaggedFraud int `json:"isFlaggedFraud"`
}

// RequiredColumns is the fixed input contract for raw datasets.
var RequiredColumns = []string{
	"step", "type", "amount", "nameOrig",
	"oldbalanceOrg", "newbalanceOrig", "nameDest",
	"oldbalanceDest", "newbalanceDest", "isFraud",
	"isFlaggedFraud",
}
