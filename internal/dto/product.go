package dto

import (
	"database/sql"
	"time"

	"github.com/donnaphatt/product-tracking-app/internal/entity"
	"github.com/shopspring/decimal"
)

type ProductCreateRequest struct {
	Name             string          `json:"name" valid:"required"`
	PurchasePrice    decimal.Decimal `json:"purchase_price"`
	ShippingFee      decimal.Decimal `json:"shipping_fee"`
	PurchaseDate     Date            `json:"purchase_date"`
	RegistrationDate Date            `json:"registration_date"`
	StartQuantity    int             `json:"start_quantity" valid:"required"`
	SupplierId       *int            `json:"supplier_id"`
}

type ProductResponse struct {
	Id                int             `json:"product_id"`
	Name              string          `json:"name"`
	PurchasePrice     decimal.Decimal `json:"purchase_price"`
	ShippingFee       decimal.Decimal `json:"shipping_fee"`
	PurchaseDate      Date            `json:"purchase_date,omitempty"`
	RegistrationDate  Date            `json:"registration_date,omitempty"`
	StartQuantity     int             `json:"start_quantity"`
	RemainingQuantity int             `json:"remaining_quantity"`
	SupplierId        *int            `json:"supplier_id,omitempty"`
}

func ConvertProductCreateRequestToEntity(req *ProductCreateRequest) *entity.ProductInsert {
	prd := &entity.ProductInsert{
		Name:          req.Name,
		PurchasePrice: req.PurchasePrice,
		ShippingFee:   req.ShippingFee,
		StartQuantity: req.StartQuantity,
	}
	if !req.PurchaseDate.IsZero() {
		prd.PurchaseDate = sql.NullTime{Time: req.PurchaseDate.Time, Valid: true}
	}
	registration := req.RegistrationDate.Time
	if registration.IsZero() {
		// registration defaults to the day the product was entered
		registration = time.Now().Truncate(24 * time.Hour)
	}
	prd.RegistrationDate = sql.NullTime{Time: registration, Valid: true}
	if req.SupplierId != nil {
		prd.SupplierId = sql.NullInt32{Int32: int32(*req.SupplierId), Valid: true}
	}
	return prd
}

func ConvertEntityProductToResponse(prd *entity.Product) ProductResponse {
	resp := ProductResponse{
		Id:                prd.Id,
		Name:              prd.Name,
		PurchasePrice:     prd.PurchasePriceDecimal(),
		ShippingFee:       prd.ShippingFeeDecimal(),
		StartQuantity:     prd.StartQuantity,
		RemainingQuantity: prd.RemainingQuantity,
	}
	if prd.PurchaseDate.Valid {
		resp.PurchaseDate = NewDate(prd.PurchaseDate.Time)
	}
	if prd.RegistrationDate.Valid {
		resp.RegistrationDate = NewDate(prd.RegistrationDate.Time)
	}
	if prd.SupplierId.Valid {
		id := int(prd.SupplierId.Int32)
		resp.SupplierId = &id
	}
	return resp
}
