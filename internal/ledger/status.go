package ledger

// Gateway charge statuses, ranked by how far along the lifecycle they are.
// Used only when monotonic status updates are enabled.
var statusRank = map[string]int{
	"PENDING":                      10,
	"AWAITING_RISK_ANALYSIS":       15,
	"OVERDUE":                      20,
	"AUTHORIZED":                   30,
	"CONFIRMED":                    40,
	"RECEIVED":                     50,
	"RECEIVED_IN_CASH":             50,
	"DUNNING_REQUESTED":            55,
	"DUNNING_RECEIVED":             60,
	"CHARGEBACK_REQUESTED":         70,
	"CHARGEBACK_DISPUTE":           75,
	"AWAITING_CHARGEBACK_REVERSAL": 78,
	"REFUND_REQUESTED":             80,
	"REFUND_IN_PROGRESS":           85,
	"REFUNDED":                     90,
}

// IsRegression reports whether moving from current to next goes backwards.
// Unknown statuses on either side are never a regression.
func IsRegression(current, next string) bool {
	cr, okc := statusRank[current]
	nr, okn := statusRank[next]
	if !okc || !okn {
		return false
	}
	return nr < cr
}
