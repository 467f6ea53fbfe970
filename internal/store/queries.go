package store

import (
	"context"
	"strings"
)

// Queries is the single query layer used by handlers and services.
// All statements are written once in canonical form; the dialect
// handles backend differences. Satisfies the narrow per-handler store
// interfaces.
type Queries struct {
	db      DBTX
	dialect Dialect
}

// New creates a query set over a pool or transaction.
func New(db DBTX, dialect Dialect) *Queries {
	return &Queries{db: db, dialect: dialect}
}

func (q *Queries) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := q.db.ExecContext(ctx, q.dialect.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// --- Admins ---

const adminColumns = `id, user_id, username, password_hash, role, branch_id, canteen_id`

func scanAdmin(row interface{ Scan(...any) error }) (Admin, error) {
	var a Admin
	err := row.Scan(&a.ID, &a.UserID, &a.Username, &a.PasswordHash, &a.Role, &a.BranchID, &a.CanteenID)
	return a, err
}

// GetAdminByLogin looks an admin up by username or employee user_id,
// matching the original login contract.
func (q *Queries) GetAdminByLogin(ctx context.Context, login string) (Admin, error) {
	row := q.db.QueryRowContext(ctx,
		q.dialect.Rebind(`SELECT `+adminColumns+` FROM admins WHERE username = ? OR user_id = ?`),
		login, login)
	return scanAdmin(row)
}

func (q *Queries) GetAdminByID(ctx context.Context, id int64) (Admin, error) {
	row := q.db.QueryRowContext(ctx,
		q.dialect.Rebind(`SELECT `+adminColumns+` FROM admins WHERE id = ?`), id)
	return scanAdmin(row)
}

func (q *Queries) ListAdmins(ctx context.Context) ([]Admin, error) {
	rows, err := q.db.QueryContext(ctx,
		q.dialect.Rebind(`SELECT id, user_id, username, role, branch_id, canteen_id FROM admins ORDER BY id`))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var admins []Admin
	for rows.Next() {
		var a Admin
		if err := rows.Scan(&a.ID, &a.UserID, &a.Username, &a.Role, &a.BranchID, &a.CanteenID); err != nil {
			return nil, err
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}

func (q *Queries) CreateAdmin(ctx context.Context, arg CreateAdminParams) (Admin, error) {
	id, err := q.dialect.Insert(ctx, q.db,
		`INSERT INTO admins (user_id, username, password_hash, role, branch_id, canteen_id) VALUES (?, ?, ?, ?, ?, ?)`,
		arg.UserID, arg.Username, arg.PasswordHash, arg.Role, arg.BranchID, arg.CanteenID)
	if err != nil {
		return Admin{}, err
	}
	return Admin{
		ID:           id,
		UserID:       arg.UserID,
		Username:     arg.Username,
		PasswordHash: arg.PasswordHash,
		Role:         arg.Role,
		BranchID:     arg.BranchID,
		CanteenID:    arg.CanteenID,
	}, nil
}

func (q *Queries) UpdateAdminRole(ctx context.Context, arg UpdateAdminRoleParams) (int64, error) {
	return q.exec(ctx,
		`UPDATE admins SET role = ?, branch_id = ?, canteen_id = ? WHERE id = ?`,
		arg.Role, arg.BranchID, arg.CanteenID, arg.ID)
}

func (q *Queries) DeleteAdmin(ctx context.Context, id int64) (int64, error) {
	return q.exec(ctx, `DELETE FROM admins WHERE id = ?`, id)
}

// ClearAdminBranch nulls branch_id on every admin pointing at the branch.
func (q *Queries) ClearAdminBranch(ctx context.Context, branchID int64) error {
	_, err := q.exec(ctx, `UPDATE admins SET branch_id = NULL WHERE branch_id = ?`, branchID)
	return err
}

// ClearAdminCanteen nulls canteen_id on every admin pointing at the canteen.
func (q *Queries) ClearAdminCanteen(ctx context.Context, canteenID int64) error {
	_, err := q.exec(ctx, `UPDATE admins SET canteen_id = NULL WHERE canteen_id = ?`, canteenID)
	return err
}

// --- Branches ---

func (q *Queries) ListBranches(ctx context.Context) ([]Branch, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, name FROM branches ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var branches []Branch
	for rows.Next() {
		var b Branch
		if err := rows.Scan(&b.ID, &b.Name); err != nil {
			return nil, err
		}
		branches = append(branches, b)
	}
	return branches, rows.Err()
}

func (q *Queries) GetBranch(ctx context.Context, id int64) (Branch, error) {
	var b Branch
	err := q.db.QueryRowContext(ctx,
		q.dialect.Rebind(`SELECT id, name FROM branches WHERE id = ?`), id).
		Scan(&b.ID, &b.Name)
	return b, err
}

func (q *Queries) CreateBranch(ctx context.Context, name string) (Branch, error) {
	id, err := q.dialect.Insert(ctx, q.db, `INSERT INTO branches (name) VALUES (?)`, name)
	if err != nil {
		return Branch{}, err
	}
	return Branch{ID: id, Name: name}, nil
}

func (q *Queries) DeleteBranch(ctx context.Context, id int64) (int64, error) {
	return q.exec(ctx, `DELETE FROM branches WHERE id = ?`, id)
}

// --- Canteens ---

func (q *Queries) ListCanteens(ctx context.Context, branchID *int64) ([]Canteen, error) {
	query := `SELECT id, name, branch_id FROM canteens`
	var args []any
	if branchID != nil {
		query += ` WHERE branch_id = ?`
		args = append(args, *branchID)
	}
	query += ` ORDER BY id`

	rows, err := q.db.QueryContext(ctx, q.dialect.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var canteens []Canteen
	for rows.Next() {
		var c Canteen
		if err := rows.Scan(&c.ID, &c.Name, &c.BranchID); err != nil {
			return nil, err
		}
		canteens = append(canteens, c)
	}
	return canteens, rows.Err()
}

func (q *Queries) GetCanteen(ctx context.Context, id int64) (Canteen, error) {
	var c Canteen
	err := q.db.QueryRowContext(ctx,
		q.dialect.Rebind(`SELECT id, name, branch_id FROM canteens WHERE id = ?`), id).
		Scan(&c.ID, &c.Name, &c.BranchID)
	return c, err
}

func (q *Queries) CreateCanteen(ctx context.Context, name string, branchID *int64) (Canteen, error) {
	id, err := q.dialect.Insert(ctx, q.db,
		`INSERT INTO canteens (name, branch_id) VALUES (?, ?)`, name, branchID)
	if err != nil {
		return Canteen{}, err
	}
	return Canteen{ID: id, Name: name, BranchID: branchID}, nil
}

func (q *Queries) ListCanteenIDsByBranch(ctx context.Context, branchID int64) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx,
		q.dialect.Rebind(`SELECT id FROM canteens WHERE branch_id = ?`), branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (q *Queries) DeleteCanteen(ctx context.Context, id int64) (int64, error) {
	return q.exec(ctx, `DELETE FROM canteens WHERE id = ?`, id)
}

func (q *Queries) DeleteCanteensByBranch(ctx context.Context, branchID int64) (int64, error) {
	return q.exec(ctx, `DELETE FROM canteens WHERE branch_id = ?`, branchID)
}

// --- Menu items ---

func (q *Queries) ListMenuItems(ctx context.Context, filter MenuItemFilter) ([]MenuItem, error) {
	query := `SELECT m.id, m.name, m.price, m.photo, m.canteen_id, m.is_active FROM menu_items m`
	var args []any
	switch {
	case filter.CanteenID != nil:
		query += ` WHERE m.canteen_id = ?`
		args = append(args, *filter.CanteenID)
	case filter.BranchID != nil:
		query += ` JOIN canteens c ON m.canteen_id = c.id WHERE c.branch_id = ?`
		args = append(args, *filter.BranchID)
	}
	query += ` ORDER BY m.id`

	rows, err := q.db.QueryContext(ctx, q.dialect.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []MenuItem
	for rows.Next() {
		var m MenuItem
		if err := rows.Scan(&m.ID, &m.Name, &m.Price, &m.Photo, &m.CanteenID, &m.IsActive); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	id, err := q.dialect.Insert(ctx, q.db,
		`INSERT INTO menu_items (name, price, photo, canteen_id, is_active) VALUES (?, ?, ?, ?, ?)`,
		arg.Name, arg.Price, arg.Photo, arg.CanteenID, arg.IsActive)
	if err != nil {
		return MenuItem{}, err
	}
	return MenuItem{
		ID:        id,
		Name:      arg.Name,
		Price:     arg.Price,
		Photo:     arg.Photo,
		CanteenID: arg.CanteenID,
		IsActive:  arg.IsActive,
	}, nil
}

func (q *Queries) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (int64, error) {
	return q.exec(ctx,
		`UPDATE menu_items SET name = ?, price = ?, photo = ?, is_active = ? WHERE id = ?`,
		arg.Name, arg.Price, arg.Photo, arg.IsActive, arg.ID)
}

func (q *Queries) DeleteMenuItem(ctx context.Context, id int64) (int64, error) {
	return q.exec(ctx, `DELETE FROM menu_items WHERE id = ?`, id)
}

func (q *Queries) DeleteMenuItemsByCanteen(ctx context.Context, canteenID int64) error {
	_, err := q.exec(ctx, `DELETE FROM menu_items WHERE canteen_id = ?`, canteenID)
	return err
}

// DeleteMenuItemsByCanteens removes the menu items of every listed
// canteen in one statement. No-op on an empty id set.
func (q *Queries) DeleteMenuItemsByCanteens(ctx context.Context, canteenIDs []int64) error {
	if len(canteenIDs) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(canteenIDs)), ", ")
	args := make([]any, len(canteenIDs))
	for i, id := range canteenIDs {
		args[i] = id
	}
	_, err := q.exec(ctx, `DELETE FROM menu_items WHERE canteen_id IN (`+placeholders+`)`, args...)
	return err
}

// --- Orders ---

const orderColumns = `id, order_id, item_names, branch_name, canteen_name, employee_name, total_amount, status, created_at, qr_code`

func scanOrder(row interface{ Scan(...any) error }) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.OrderID, &o.ItemNames, &o.BranchName, &o.CanteenName,
		&o.EmployeeName, &o.TotalAmount, &o.Status, &o.CreatedAt, &o.QRCode)
	return o, err
}

// CreateOrder inserts a new order row and returns the surrogate key
// assigned by the database.
func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (int64, error) {
	return q.dialect.Insert(ctx, q.db,
		`INSERT INTO orders (order_id, item_names, branch_name, canteen_name, employee_name, total_amount, status, created_at, qr_code) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.OrderID, arg.ItemNames, arg.BranchName, arg.CanteenName, arg.EmployeeName,
		arg.TotalAmount, arg.Status, arg.CreatedAt, arg.QRCode)
}

// FinalizeOrder writes the derived display identifier and QR payload
// back onto a freshly inserted row.
func (q *Queries) FinalizeOrder(ctx context.Context, id int64, orderID, qrCode string) error {
	_, err := q.exec(ctx, `UPDATE orders SET order_id = ?, qr_code = ? WHERE id = ?`, orderID, qrCode, id)
	return err
}

func (q *Queries) GetOrderByOrderID(ctx context.Context, orderID string) (Order, error) {
	row := q.db.QueryRowContext(ctx,
		q.dialect.Rebind(`SELECT `+orderColumns+` FROM orders WHERE order_id = ?`), orderID)
	return scanOrder(row)
}

func (q *Queries) ListOrders(ctx context.Context, filter OrderFilter) ([]Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	var args []any
	switch {
	case filter.BranchName != nil:
		query += ` WHERE branch_name = ?`
		args = append(args, *filter.BranchName)
	case filter.CanteenName != nil:
		query += ` WHERE canteen_name = ?`
		args = append(args, *filter.CanteenName)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := q.db.QueryContext(ctx, q.dialect.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// UpdateOrderStatus sets the status on every row carrying the display
// identifier and reports how many rows matched.
func (q *Queries) UpdateOrderStatus(ctx context.Context, orderID, status string) (int64, error) {
	return q.exec(ctx, `UPDATE orders SET status = ? WHERE order_id = ?`, status, orderID)
}

// UpdateOrderQR rewrites the stored QR payload for an order.
func (q *Queries) UpdateOrderQR(ctx context.Context, orderID, qrCode string) error {
	_, err := q.exec(ctx, `UPDATE orders SET qr_code = ? WHERE order_id = ?`, qrCode, orderID)
	return err
}
