package dto

// CreateSessionRequest opens a counting session. Empty ProductIDs
// covers every active product.
type CreateSessionRequest struct {
	Date       string   `json:"date"`
	Notes      string   `json:"notes"`
	ProductIDs []string `json:"productIds"`
}

// RecordCountRequest records one physical count.
type RecordCountRequest struct {
	ProductID     string `json:"productId" binding:"required"`
	PhysicalStock int64  `json:"physicalStock" binding:"min=0"`
}

// SubmitRequest submits a session for approval.
type SubmitRequest struct {
	AllowPartial bool `json:"allowPartial"`
}

// ApproveRequest approves a session, optionally applying adjustments in
// the same call.
type ApproveRequest struct {
	ApplyAdjustments bool `json:"applyAdjustments"`
}

// RejectRequest rejects a session with a mandatory reason.
type RejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}
