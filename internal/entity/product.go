package entity

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Product represents the products table. PurchasePrice and ShippingFee are
// per unit; ShippingFee may already be pre-divided across a purchase batch.
type Product struct {
	Id                int       `db:"id"`
	CreatedAt         time.Time `db:"created_at"`
	RemainingQuantity int       `db:"remaining_quantity"`
	ProductInsert
}

type ProductInsert struct {
	Name             string          `db:"name" valid:"required"`
	PurchasePrice    decimal.Decimal `db:"purchase_price"`
	ShippingFee      decimal.Decimal `db:"shipping_fee"`
	PurchaseDate     sql.NullTime    `db:"purchase_date" valid:"-"`
	RegistrationDate sql.NullTime    `db:"registration_date" valid:"-"`
	StartQuantity    int             `db:"start_quantity" valid:"required"`
	SupplierId       sql.NullInt32   `db:"supplier_id" valid:"-"`
}

func (p *Product) PurchasePriceDecimal() decimal.Decimal {
	return p.PurchasePrice.Round(2)
}

func (p *Product) ShippingFeeDecimal() decimal.Decimal {
	return p.ShippingFee.Round(2)
}

// Catalog is a product lookup keyed by product id. The profit calculator
// resolves order item references against it in O(1) instead of scanning.
type Catalog map[int]Product

func CatalogFromProducts(products []Product) Catalog {
	c := make(Catalog, len(products))
	for _, p := range products {
		c[p.Id] = p
	}
	return c
}
