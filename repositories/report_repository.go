package repositories

import (
	"gorm.io/gorm"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

type StockReportRow struct {
	ItemCode  string `json:"item_code"`
	ItemName  string `json:"item_name"`
	WhsCode   string `json:"whs_code"`
	OnHand    int    `json:"on_hand"`
	Lots      int    `json:"lots"`
	Locations int    `json:"locations"`
	Received  int    `json:"received"`
	Picked    int    `json:"picked"`
	Restocked int    `json:"restocked"`
}

// StockReport aggregates on-hand stock per product with movement totals for
// one warehouse.
func (r *ReportRepository) StockReport(whsCode string) ([]StockReportRow, error) {
	sql := `WITH stock AS (
		SELECT item_code, whs_code,
			SUM(quantity) AS on_hand,
			COUNT(*) AS lots,
			COUNT(DISTINCT location_code) AS locations
		FROM lots
		WHERE status = 'active' AND whs_code = ?
		GROUP BY item_code, whs_code
	),
	moves AS (
		SELECT item_code, whs_code,
			SUM(CASE WHEN trans_type = 'receive' THEN quantity ELSE 0 END) AS received,
			SUM(CASE WHEN trans_type = 'picking' THEN -quantity ELSE 0 END) AS picked,
			SUM(CASE WHEN trans_type = 'return' THEN quantity ELSE 0 END) AS restocked
		FROM stock_movements
		WHERE whs_code = ?
		GROUP BY item_code, whs_code
	)
	SELECT s.item_code, COALESCE(p.item_name, '') AS item_name, s.whs_code,
		s.on_hand, s.lots, s.locations,
		COALESCE(m.received, 0) AS received,
		COALESCE(m.picked, 0) AS picked,
		COALESCE(m.restocked, 0) AS restocked
	FROM stock s
	LEFT JOIN moves m ON m.item_code = s.item_code AND m.whs_code = s.whs_code
	LEFT JOIN products p ON p.item_code = s.item_code
	ORDER BY s.item_code`

	var rows []StockReportRow
	if err := r.db.Raw(sql, whsCode, whsCode).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

type MovementRow struct {
	TransType    string `json:"trans_type"`
	RefNo        string `json:"ref_no"`
	ItemCode     string `json:"item_code"`
	BatchNo      string `json:"batch_no"`
	DotCode      string `json:"dot_code"`
	WhsCode      string `json:"whs_code"`
	FromLocation string `json:"from_location"`
	ToLocation   string `json:"to_location"`
	Quantity     int    `json:"quantity"`
	Reason       string `json:"reason"`
	CreatedAt    string `json:"created_at"`
	CreatedBy    int    `json:"created_by"`
}

// Movements returns the audit trail for a product, newest first.
func (r *ReportRepository) Movements(whsCode, itemCode string, limit int) ([]MovementRow, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	sql := `SELECT trans_type, ref_no, item_code, batch_no, dot_code, whs_code,
		from_location, to_location, quantity, reason, created_at, created_by
	FROM stock_movements
	WHERE whs_code = ? AND (? = '' OR item_code = ?)
	ORDER BY created_at DESC, id DESC
	LIMIT ?`

	var rows []MovementRow
	if err := r.db.Raw(sql, whsCode, itemCode, itemCode, limit).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
