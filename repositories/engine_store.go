package repositories

import (
	"strings"
	"time"

	"wms-core/models"
	"wms-core/services"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EngineStore persists engine state to the database. The engine keeps the
// authoritative copy in memory and pushes every mutation through here; on
// startup the Load functions rebuild the arenas from the rows.
type EngineStore struct {
	db *gorm.DB
}

func NewEngineStore(db *gorm.DB) *EngineStore {
	return &EngineStore{db: db}
}

func upsert(tx *gorm.DB, value interface{}) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(value).Error
}

func (s *EngineStore) SaveLot(lot *services.Lot) error {
	row := models.Lot{
		ID:           lot.ID,
		ItemCode:     lot.Key.ItemCode,
		BatchNo:      lot.Key.BatchNo,
		DotCode:      lot.Key.DotCode,
		WhsCode:      lot.Key.WhsCode,
		LocationCode: lot.Key.Location,
		Quantity:     lot.Quantity,
		Status:       string(lot.Status),
		Version:      lot.Version,
	}
	if !lot.Expiry.IsZero() {
		row.ExpiryDate = lot.Expiry.Format("2006-01-02")
	}
	return upsert(s.db, &row)
}

func (s *EngineStore) SaveMovement(m *services.Movement) error {
	return s.db.Create(&models.StockMovement{
		TransType:    m.TransType,
		RefNo:        m.RefNo,
		ItemCode:     m.ItemCode,
		BatchNo:      m.BatchNo,
		DotCode:      m.DotCode,
		WhsCode:      m.WhsCode,
		FromWhsCode:  m.FromWhsCode,
		FromLocation: m.FromLocation,
		ToLocation:   m.ToLocation,
		Quantity:     m.Quantity,
		Reason:       m.Reason,
		CreatedBy:    m.UserID,
	}).Error
}

func (s *EngineStore) SaveStickers(stickers []*services.Sticker) error {
	rows := make([]models.Sticker, 0, len(stickers))
	for _, st := range stickers {
		rows = append(rows, models.Sticker{
			Code:       st.Code,
			LotID:      st.LotID,
			OutboundID: st.OutboundID,
			Status:     string(st.Status),
		})
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		UpdateAll: true,
	}).Create(&rows).Error
}

func (s *EngineStore) SaveReceipt(r *services.Receipt) error {
	tx := s.db.Begin()
	defer func() {
		if rec := recover(); rec != nil {
			tx.Rollback()
		}
	}()

	header := models.InboundHeader{
		ID:           r.ID,
		ReceiptNo:    r.ReceiptNo,
		SupplierCode: r.SupplierCode,
		WhsCode:      r.WhsCode,
		ArrivalDate:  r.ArrivalDate,
		Status:       string(r.Status),
	}
	if err := upsert(tx, &header); err != nil {
		tx.Rollback()
		return err
	}

	for _, c := range r.Containers {
		cr := models.InboundContainer{ID: c.ID, InboundID: r.ID, ContainerNo: c.ContainerNo}
		if err := upsert(tx, &cr); err != nil {
			tx.Rollback()
			return err
		}
		for _, item := range c.Items {
			ir := models.InboundItem{
				ID:          item.ID,
				InboundID:   r.ID,
				ContainerID: c.ID,
				ItemCode:    item.ItemCode,
				ExpectedQty: item.ExpectedQty,
				ReceivedQty: item.ReceivedQty,
				PutawayQty:  item.PutawayQty,
				UnitCost:    item.UnitCost,
			}
			if err := upsert(tx, &ir); err != nil {
				tx.Rollback()
				return err
			}
			for _, line := range item.Lines {
				lr := models.InboundLine{
					ID:            line.ID,
					InboundID:     r.ID,
					InboundItemID: item.ID,
					ItemCode:      item.ItemCode,
					BatchNo:       line.BatchNo,
					DotCode:       line.DotCode,
					Quantity:      line.Quantity,
					PutawayQty:    line.PutawayQty,
					UnitCost:      line.UnitCost,
					StickerCodes:  strings.Join(line.Stickers, ","),
				}
				if err := upsert(tx, &lr); err != nil {
					tx.Rollback()
					return err
				}
				for _, p := range line.Putaways {
					pr := models.InboundPutaway{
						ID:            p.ID,
						InboundLineID: line.ID,
						LocationCode:  p.Location,
						Quantity:      p.Quantity,
						LotID:         p.LotID,
					}
					if err := upsert(tx, &pr); err != nil {
						tx.Rollback()
						return err
					}
				}
			}
		}
	}

	return tx.Commit().Error
}

func (s *EngineStore) SaveOrder(o *services.Order) error {
	tx := s.db.Begin()
	defer func() {
		if rec := recover(); rec != nil {
			tx.Rollback()
		}
	}()

	header := models.OutboundHeader{
		ID:              o.ID,
		OrderNo:         o.OrderNo,
		CustomerCode:    o.CustomerCode,
		WhsCode:         o.WhsCode,
		ShipDate:        o.DeliveryDate,
		Status:          string(o.Status),
		StagingLocation: o.StagingLocation,
		DriverName:      o.DriverName,
		DriverType:      o.DriverType,
		VehicleNo:       o.VehicleNo,
		ReceiverName:    o.ReceiverName,
		ReceiverPhone:   o.ReceiverPhone,
		PhotoRef:        o.PhotoURL,
	}
	if err := upsert(tx, &header); err != nil {
		tx.Rollback()
		return err
	}

	for _, item := range o.Items {
		ir := models.OutboundItem{
			ID:          item.ID,
			OutboundID:  o.ID,
			ItemCode:    item.ItemCode,
			OrderedQty:  item.OrderedQty,
			PickedQty:   item.PickedQty,
			ReturnedQty: item.ReturnedQty,
		}
		if err := upsert(tx, &ir); err != nil {
			tx.Rollback()
			return err
		}
		for _, a := range item.Allocations {
			ar := models.PickAllocation{
				ID:             a.ID,
				OutboundID:     o.ID,
				OutboundItemID: item.ID,
				LotID:          a.LotID,
				ItemCode:       a.Key.ItemCode,
				BatchNo:        a.Key.BatchNo,
				DotCode:        a.Key.DotCode,
				WhsCode:        a.Key.WhsCode,
				LocationCode:   a.Key.Location,
				Quantity:       a.Quantity,
				StickerCodes:   strings.Join(a.Stickers, ","),
			}
			if err := upsert(tx, &ar); err != nil {
				tx.Rollback()
				return err
			}
		}
	}

	// delivery failures are append-only, rewrite the set for the order
	if err := tx.Unscoped().Where("outbound_id = ?", o.ID).Delete(&models.DeliveryFailure{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	for _, fdata := range o.Failures {
		fr := models.DeliveryFailure{OutboundID: o.ID, Reason: fdata.Reason, Notes: fdata.Notes}
		fr.CreatedAt = fdata.At
		if err := tx.Create(&fr).Error; err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit().Error
}

func (s *EngineStore) SaveReturn(r *services.Return) error {
	tx := s.db.Begin()
	defer func() {
		if rec := recover(); rec != nil {
			tx.Rollback()
		}
	}()

	header := models.ReturnHeader{
		ID:         r.ID,
		RmaNo:      r.ReturnNo,
		OutboundID: r.OrderID,
		OrderNo:    r.OrderNo,
		WhsCode:    r.WhsCode,
		Status:     string(r.Status),
	}
	if err := upsert(tx, &header); err != nil {
		tx.Rollback()
		return err
	}

	for _, item := range r.Items {
		ir := models.ReturnItem{
			ID:           item.ID,
			ReturnID:     r.ID,
			ItemCode:     item.ItemCode,
			ExpectedQty:  item.ExpectedQty,
			ProcessedQty: item.ProcessedQty,
			RestockedQty: item.RestockedQty,
		}
		if err := upsert(tx, &ir); err != nil {
			tx.Rollback()
			return err
		}
	}

	if err := tx.Unscoped().Where("return_id = ?", r.ID).Delete(&models.ReturnInspection{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	for _, insp := range r.Inspections {
		row := models.ReturnInspection{
			ReturnID:     r.ID,
			StickerCode:  insp.Sticker,
			ItemCode:     insp.ItemCode,
			Condition:    insp.Condition,
			LocationCode: insp.Location,
			Restocked:    insp.Restocked,
			NewSticker:   insp.NewSticker,
			Notes:        insp.Notes,
		}
		row.CreatedAt = insp.At
		if err := tx.Create(&row).Error; err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit().Error
}

func (s *EngineStore) SaveTransfer(t *services.Transfer) error {
	tx := s.db.Begin()
	defer func() {
		if rec := recover(); rec != nil {
			tx.Rollback()
		}
	}()

	header := models.TransferHeader{
		ID:         t.ID,
		TransferNo: t.TransferNo,
		WhsCode:    t.WhsCode,
		ToWhsCode:  t.ToWhsCode,
		Status:     string(t.Status),
	}
	if err := upsert(tx, &header); err != nil {
		tx.Rollback()
		return err
	}

	for _, ln := range t.Lines {
		row := models.TransferItem{
			ID:           ln.ID,
			TransferID:   t.ID,
			LotID:        ln.LotID,
			DestLotID:    ln.DestLotID,
			ItemCode:     ln.ItemCode,
			Quantity:     ln.Quantity,
			FromLocation: ln.FromLocation,
			ToLocation:   ln.ToLocation,
		}
		if err := upsert(tx, &row); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit().Error
}

func parseDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}
	}
	return t
}
