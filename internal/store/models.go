package store

import "time"

// Branch owns zero or more canteens.
type Branch struct {
	ID   int64
	Name string
}

// Canteen belongs to a branch and owns zero or more menu items.
// BranchID is nullable in the schema, though in practice canteens are
// deleted together with their branch.
type Canteen struct {
	ID       int64
	Name     string
	BranchID *int64
}

// MenuItem is one purchasable item on a canteen's menu. Price is a
// currency-symbol-prefixed string; Photo is a data URI or URL.
type MenuItem struct {
	ID        int64
	Name      string
	Price     string
	Photo     string
	CanteenID int64
	IsActive  bool
}

// Admin is a staff account. Role decides which of BranchID/CanteenID
// may be set; the other is always NULL.
type Admin struct {
	ID           int64
	UserID       string
	Username     string
	PasswordHash string
	Role         string
	BranchID     *int64
	CanteenID    *int64
}

// Order is a placed order. Branch, canteen, and employee are
// denormalized snapshot strings taken at order time, not foreign keys.
type Order struct {
	ID           int64
	OrderID      string
	ItemNames    string
	BranchName   string
	CanteenName  string
	EmployeeName string
	TotalAmount  string
	Status       string
	CreatedAt    time.Time
	QRCode       *string
}

// --- Parameter structs ---

type CreateAdminParams struct {
	UserID       string
	Username     string
	PasswordHash string
	Role         string
	BranchID     *int64
	CanteenID    *int64
}

type UpdateAdminRoleParams struct {
	ID        int64
	Role      string
	BranchID  *int64
	CanteenID *int64
}

type CreateMenuItemParams struct {
	Name      string
	Price     string
	Photo     string
	IsActive  bool
	CanteenID int64
}

type UpdateMenuItemParams struct {
	ID       int64
	Name     string
	Price    string
	Photo    string
	IsActive bool
}

// MenuItemFilter narrows a menu listing. CanteenID wins over BranchID
// when both are set, matching the original route behavior.
type MenuItemFilter struct {
	CanteenID *int64
	BranchID  *int64
}

type CreateOrderParams struct {
	OrderID      string
	ItemNames    string
	BranchName   string
	CanteenName  string
	EmployeeName string
	TotalAmount  string
	Status       string
	CreatedAt    time.Time
	QRCode       *string
}

// OrderFilter narrows an order listing by denormalized snapshot name.
type OrderFilter struct {
	BranchName  *string
	CanteenName *string
}
