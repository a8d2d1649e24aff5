package models

// APIResponse is the envelope for every admin-facing endpoint.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// AdminContext carries the authenticated operator identity into the manual
// confirmation workflow and the refund processor. The core never reads
// ambient session state; the auth middleware builds this explicitly.
type AdminContext struct {
	AdminID string `json:"admin_id"`
	Name    string `json:"name"`
}
