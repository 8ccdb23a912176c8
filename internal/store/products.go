package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/donnaphatt/product-tracking-app/internal/dependency"
	"github.com/donnaphatt/product-tracking-app/internal/entity"
)

// ErrInsufficientStock is returned when an order asks for more units than a
// product has remaining.
var ErrInsufficientStock = errors.New("not enough stock for product")

// ErrProductNotFound is returned when a product id resolves to no row.
var ErrProductNotFound = errors.New("product not found")

type productStore struct {
	*MYSQLStore
}

// Products returns an object implementing the products interface
func (ms *MYSQLStore) Products() dependency.Products {
	return &productStore{
		MYSQLStore: ms,
	}
}

func (ps *productStore) AddProduct(ctx context.Context, prd *entity.ProductInsert) (int, error) {
	query := `
	INSERT INTO products
		(name, purchase_price, shipping_fee, purchase_date, registration_date, start_quantity, remaining_quantity, supplier_id)
	VALUES
		(:name, :purchasePrice, :shippingFee, :purchaseDate, :registrationDate, :startQuantity, :remainingQuantity, :supplierId)`

	id, err := ExecNamedLastId(ctx, ps.db, query, map[string]any{
		"name":             prd.Name,
		"purchasePrice":    prd.PurchasePrice,
		"shippingFee":      prd.ShippingFee,
		"purchaseDate":     prd.PurchaseDate,
		"registrationDate": prd.RegistrationDate,
		"startQuantity":    prd.StartQuantity,
		// remaining quantity always starts at the full batch
		"remainingQuantity": prd.StartQuantity,
		"supplierId":        prd.SupplierId,
	})
	if err != nil {
		return 0, fmt.Errorf("can't insert product: %w", err)
	}
	return id, nil
}

func (ps *productStore) GetAllProducts(ctx context.Context) ([]entity.Product, error) {
	query := `
	SELECT id, created_at, name, purchase_price, shipping_fee, purchase_date,
		registration_date, start_quantity, remaining_quantity, supplier_id
	FROM products ORDER BY id`

	products, err := QueryListNamed[entity.Product](ctx, ps.db, query, map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("can't get products: %w", err)
	}
	return products, nil
}

func (ps *productStore) GetProductById(ctx context.Context, id int) (*entity.Product, error) {
	query := `
	SELECT id, created_at, name, purchase_price, shipping_fee, purchase_date,
		registration_date, start_quantity, remaining_quantity, supplier_id
	FROM products WHERE id = :id`

	prd, err := QueryNamedOne[entity.Product](ctx, ps.db, query, map[string]any{
		"id": id,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("can't get product by id: %w", err)
	}
	return &prd, nil
}

func (ps *productStore) DeleteProductById(ctx context.Context, id int) error {
	affected, err := ExecNamedRowsAffected(ctx, ps.db, `DELETE FROM products WHERE id = :id`, map[string]any{
		"id": id,
	})
	if err != nil {
		return fmt.Errorf("can't delete product: %w", err)
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (ps *productStore) ReduceStock(ctx context.Context, items []entity.OrderItemInsert) error {
	query := `
	UPDATE products
	SET remaining_quantity = remaining_quantity - :quantity
	WHERE id = :productId AND remaining_quantity >= :quantity`

	for _, item := range items {
		affected, err := ExecNamedRowsAffected(ctx, ps.db, query, map[string]any{
			"productId": item.ProductId,
			"quantity":  item.Quantity,
		})
		if err != nil {
			return fmt.Errorf("can't reduce stock for product %d: %w", item.ProductId, err)
		}
		if affected == 0 {
			return fmt.Errorf("product %d: %w", item.ProductId, ErrInsufficientStock)
		}
	}
	return nil
}

func (ps *productStore) RestoreStock(ctx context.Context, items []entity.OrderItemInsert) error {
	query := `
	UPDATE products
	SET remaining_quantity = LEAST(remaining_quantity + :quantity, start_quantity)
	WHERE id = :productId`

	for _, item := range items {
		if err := ExecNamed(ctx, ps.db, query, map[string]any{
			"productId": item.ProductId,
			"quantity":  item.Quantity,
		}); err != nil {
			return fmt.Errorf("can't restore stock for product %d: %w", item.ProductId, err)
		}
	}
	return nil
}
