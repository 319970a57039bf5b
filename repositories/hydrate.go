package repositories

import (
	"strings"

	"wms-core/models"
	"wms-core/services"
	"wms-core/types"
)

// EngineState is everything the in-memory engine needs to resume after a
// restart.
type EngineState struct {
	Lots      []*services.Lot
	Stickers  []*services.Sticker
	Receipts  []*services.Receipt
	Orders    []*services.Order
	Returns   []*services.Return
	Transfers []*services.Transfer

	LastReceiptNo  string
	LastOrderNo    string
	LastReturnNo   string
	LastTransferNo string
}

// Load rebuilds the engine state from the database.
func (s *EngineStore) Load() (*EngineState, error) {
	state := &EngineState{}

	var err error
	if state.Lots, err = s.loadLots(); err != nil {
		return nil, err
	}
	if state.Stickers, err = s.loadStickers(); err != nil {
		return nil, err
	}
	if state.Receipts, err = s.loadReceipts(); err != nil {
		return nil, err
	}
	if state.Orders, err = s.loadOrders(); err != nil {
		return nil, err
	}
	if state.Returns, err = s.loadReturns(); err != nil {
		return nil, err
	}
	if state.Transfers, err = s.loadTransfers(); err != nil {
		return nil, err
	}

	s.db.Model(&models.InboundHeader{}).Order("receipt_no desc").Limit(1).Pluck("receipt_no", &state.LastReceiptNo)
	s.db.Model(&models.OutboundHeader{}).Order("order_no desc").Limit(1).Pluck("order_no", &state.LastOrderNo)
	s.db.Model(&models.ReturnHeader{}).Order("rma_no desc").Limit(1).Pluck("rma_no", &state.LastReturnNo)
	s.db.Model(&models.TransferHeader{}).Order("transfer_no desc").Limit(1).Pluck("transfer_no", &state.LastTransferNo)

	return state, nil
}

func (s *EngineStore) loadLots() ([]*services.Lot, error) {
	var rows []models.Lot
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, err
	}

	lots := make([]*services.Lot, 0, len(rows))
	for _, row := range rows {
		lots = append(lots, &services.Lot{
			ID: row.ID,
			Key: services.LotKey{
				ItemCode: row.ItemCode,
				BatchNo:  row.BatchNo,
				DotCode:  row.DotCode,
				WhsCode:  row.WhsCode,
				Location: row.LocationCode,
			},
			Expiry:   parseDate(row.ExpiryDate),
			Quantity: row.Quantity,
			Status:   services.LotStatus(row.Status),
			Version:  row.Version,
		})
	}
	return lots, nil
}

func (s *EngineStore) loadStickers() ([]*services.Sticker, error) {
	var rows []models.Sticker
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, err
	}

	stickers := make([]*services.Sticker, 0, len(rows))
	for _, row := range rows {
		stickers = append(stickers, &services.Sticker{
			Code:       row.Code,
			LotID:      row.LotID,
			OutboundID: row.OutboundID,
			Status:     services.StickerStatus(row.Status),
		})
	}
	return stickers, nil
}

func (s *EngineStore) loadReceipts() ([]*services.Receipt, error) {
	var headers []models.InboundHeader
	if err := s.db.Find(&headers).Error; err != nil {
		return nil, err
	}
	var containers []models.InboundContainer
	if err := s.db.Find(&containers).Error; err != nil {
		return nil, err
	}
	var items []models.InboundItem
	if err := s.db.Find(&items).Error; err != nil {
		return nil, err
	}
	var lines []models.InboundLine
	if err := s.db.Find(&lines).Error; err != nil {
		return nil, err
	}
	var putaways []models.InboundPutaway
	if err := s.db.Find(&putaways).Error; err != nil {
		return nil, err
	}

	putawaysByLine := make(map[types.SnowflakeID][]services.PutawayRecord)
	for _, p := range putaways {
		putawaysByLine[p.InboundLineID] = append(putawaysByLine[p.InboundLineID], services.PutawayRecord{
			ID:       p.ID,
			Location: p.LocationCode,
			Quantity: p.Quantity,
			LotID:    p.LotID,
		})
	}
	linesByItem := make(map[types.SnowflakeID][]*services.ReceiptLine)
	for _, ln := range lines {
		linesByItem[ln.InboundItemID] = append(linesByItem[ln.InboundItemID], &services.ReceiptLine{
			ID:         ln.ID,
			BatchNo:    ln.BatchNo,
			DotCode:    ln.DotCode,
			Quantity:   ln.Quantity,
			PutawayQty: ln.PutawayQty,
			UnitCost:   ln.UnitCost,
			Stickers:   splitCodes(ln.StickerCodes),
			Putaways:   putawaysByLine[ln.ID],
		})
	}
	itemsByContainer := make(map[types.SnowflakeID][]*services.ReceiptItem)
	for _, it := range items {
		itemsByContainer[it.ContainerID] = append(itemsByContainer[it.ContainerID], &services.ReceiptItem{
			ID:          it.ID,
			ItemCode:    it.ItemCode,
			ExpectedQty: it.ExpectedQty,
			ReceivedQty: it.ReceivedQty,
			PutawayQty:  it.PutawayQty,
			UnitCost:    it.UnitCost,
			Lines:       linesByItem[it.ID],
		})
	}
	containersByReceipt := make(map[types.SnowflakeID][]*services.Container)
	for _, c := range containers {
		containersByReceipt[c.InboundID] = append(containersByReceipt[c.InboundID], &services.Container{
			ID:          c.ID,
			ContainerNo: c.ContainerNo,
			Items:       itemsByContainer[c.ID],
		})
	}

	receipts := make([]*services.Receipt, 0, len(headers))
	for _, h := range headers {
		receipts = append(receipts, &services.Receipt{
			ID:           h.ID,
			ReceiptNo:    h.ReceiptNo,
			SupplierCode: h.SupplierCode,
			WhsCode:      h.WhsCode,
			ArrivalDate:  h.ArrivalDate,
			Status:       services.ReceiptStatus(h.Status),
			Containers:   containersByReceipt[h.ID],
		})
	}
	return receipts, nil
}

func (s *EngineStore) loadOrders() ([]*services.Order, error) {
	var headers []models.OutboundHeader
	if err := s.db.Find(&headers).Error; err != nil {
		return nil, err
	}
	var items []models.OutboundItem
	if err := s.db.Find(&items).Error; err != nil {
		return nil, err
	}
	var allocations []models.PickAllocation
	if err := s.db.Find(&allocations).Error; err != nil {
		return nil, err
	}
	var failures []models.DeliveryFailure
	if err := s.db.Find(&failures).Error; err != nil {
		return nil, err
	}

	allocsByItem := make(map[types.SnowflakeID][]*services.PickAllocation)
	for _, a := range allocations {
		allocsByItem[a.OutboundItemID] = append(allocsByItem[a.OutboundItemID], &services.PickAllocation{
			ID:    a.ID,
			LotID: a.LotID,
			Key: services.LotKey{
				ItemCode: a.ItemCode,
				BatchNo:  a.BatchNo,
				DotCode:  a.DotCode,
				WhsCode:  a.WhsCode,
				Location: a.LocationCode,
			},
			Quantity: a.Quantity,
			Stickers: splitCodes(a.StickerCodes),
		})
	}
	itemsByOrder := make(map[types.SnowflakeID][]*services.OrderItem)
	for _, it := range items {
		itemsByOrder[it.OutboundID] = append(itemsByOrder[it.OutboundID], &services.OrderItem{
			ID:          it.ID,
			ItemCode:    it.ItemCode,
			OrderedQty:  it.OrderedQty,
			PickedQty:   it.PickedQty,
			ReturnedQty: it.ReturnedQty,
			Allocations: allocsByItem[it.ID],
		})
	}
	failuresByOrder := make(map[types.SnowflakeID][]services.DeliveryFailure)
	for _, fr := range failures {
		failuresByOrder[fr.OutboundID] = append(failuresByOrder[fr.OutboundID], services.DeliveryFailure{
			Reason: fr.Reason,
			Notes:  fr.Notes,
			At:     fr.CreatedAt,
		})
	}

	orders := make([]*services.Order, 0, len(headers))
	for _, h := range headers {
		orders = append(orders, &services.Order{
			ID:              h.ID,
			OrderNo:         h.OrderNo,
			CustomerCode:    h.CustomerCode,
			WhsCode:         h.WhsCode,
			DeliveryDate:    h.ShipDate,
			Status:          services.OrderStatus(h.Status),
			Items:           itemsByOrder[h.ID],
			StagingLocation: h.StagingLocation,
			DriverName:      h.DriverName,
			DriverType:      h.DriverType,
			VehicleNo:       h.VehicleNo,
			ReceiverName:    h.ReceiverName,
			ReceiverPhone:   h.ReceiverPhone,
			PhotoURL:        h.PhotoRef,
			Failures:        failuresByOrder[h.ID],
		})
	}
	return orders, nil
}

func (s *EngineStore) loadReturns() ([]*services.Return, error) {
	var headers []models.ReturnHeader
	if err := s.db.Find(&headers).Error; err != nil {
		return nil, err
	}
	var items []models.ReturnItem
	if err := s.db.Find(&items).Error; err != nil {
		return nil, err
	}
	var inspections []models.ReturnInspection
	if err := s.db.Find(&inspections).Error; err != nil {
		return nil, err
	}

	itemsByReturn := make(map[types.SnowflakeID][]*services.ReturnItem)
	for _, it := range items {
		itemsByReturn[it.ReturnID] = append(itemsByReturn[it.ReturnID], &services.ReturnItem{
			ID:           it.ID,
			ItemCode:     it.ItemCode,
			ExpectedQty:  it.ExpectedQty,
			ProcessedQty: it.ProcessedQty,
			RestockedQty: it.RestockedQty,
		})
	}
	inspByReturn := make(map[types.SnowflakeID][]services.Inspection)
	for _, insp := range inspections {
		inspByReturn[insp.ReturnID] = append(inspByReturn[insp.ReturnID], services.Inspection{
			Sticker:    insp.StickerCode,
			ItemCode:   insp.ItemCode,
			Condition:  insp.Condition,
			Restocked:  insp.Restocked,
			Location:   insp.LocationCode,
			NewSticker: insp.NewSticker,
			Notes:      insp.Notes,
			At:         insp.CreatedAt,
		})
	}

	returns := make([]*services.Return, 0, len(headers))
	for _, h := range headers {
		returns = append(returns, &services.Return{
			ID:          h.ID,
			ReturnNo:    h.RmaNo,
			OrderID:     h.OutboundID,
			OrderNo:     h.OrderNo,
			WhsCode:     h.WhsCode,
			Status:      services.ReturnStatus(h.Status),
			Items:       itemsByReturn[h.ID],
			Inspections: inspByReturn[h.ID],
		})
	}
	return returns, nil
}

func (s *EngineStore) loadTransfers() ([]*services.Transfer, error) {
	var headers []models.TransferHeader
	if err := s.db.Find(&headers).Error; err != nil {
		return nil, err
	}
	var items []models.TransferItem
	if err := s.db.Find(&items).Error; err != nil {
		return nil, err
	}

	linesByTransfer := make(map[types.SnowflakeID][]*services.TransferLine)
	for _, it := range items {
		linesByTransfer[it.TransferID] = append(linesByTransfer[it.TransferID], &services.TransferLine{
			ID:           it.ID,
			LotID:        it.LotID,
			ItemCode:     it.ItemCode,
			Quantity:     it.Quantity,
			ToLocation:   it.ToLocation,
			FromLocation: it.FromLocation,
			DestLotID:    it.DestLotID,
		})
	}

	transfers := make([]*services.Transfer, 0, len(headers))
	for _, h := range headers {
		transfers = append(transfers, &services.Transfer{
			ID:         h.ID,
			TransferNo: h.TransferNo,
			WhsCode:    h.WhsCode,
			ToWhsCode:  h.ToWhsCode,
			Status:     services.TransferStatus(h.Status),
			Lines:      linesByTransfer[h.ID],
		})
	}
	return transfers, nil
}

func splitCodes(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
