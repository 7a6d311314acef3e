package models

// Statistics summarises the claim corpus by status.
type Statistics struct {
	TotalClaims       int     `json:"total_claims"`
	PendingClaims     int     `json:"pending_claims"`
	UnderReviewClaims int     `json:"under_review_claims"`
	ApprovedClaims    int     `json:"approved_claims"`
	RejectedClaims    int     `json:"rejected_claims"`
	ApprovalRate      float64 `json:"approval_rate"`
}

// RegionSummary holds per-status counts for one location.state value.
// State is nil for claims without a state.
type RegionSummary struct {
	State       *string `json:"state"`
	TotalClaims int64   `json:"total_claims"`
	Pending     int64   `json:"pending"`
	UnderReview int64   `json:"under_review"`
	Approved    int64   `json:"approved"`
	Rejected    int64   `json:"rejected"`
}
