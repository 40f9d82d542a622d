package profiles

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=USER ADMIN user admin"`
}
