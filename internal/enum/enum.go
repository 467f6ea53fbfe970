package enum

// --- Order statuses ---
//
// Terminal states are advisory only; the API accepts any transition.

const (
	OrderStatusPending    = "Pending"
	OrderStatusProcessing = "Processing"
	OrderStatusCompleted  = "Completed"
	OrderStatusDelivered  = "Delivered"
	OrderStatusCancelled  = "Cancelled"
)

// OrderStatuses lists every accepted order status.
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusCompleted,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// --- Admin roles ---

const (
	RoleMainAdmin    = "main_admin"
	RoleBranchAdmin  = "branch_admin"
	RoleCanteenAdmin = "canteen_admin"
)

// Roles lists every accepted admin role.
var Roles = []string{RoleMainAdmin, RoleBranchAdmin, RoleCanteenAdmin}

// --- QR payload modes ---

const (
	QRModeURL  = "url"  // deep link to the order details page
	QRModeText = "text" // human-readable order summary encoded directly
)
