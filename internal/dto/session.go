package dto

// StoreSessionRequest captures PUT /session payload.
type StoreSessionRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=student teacher president"`
}
