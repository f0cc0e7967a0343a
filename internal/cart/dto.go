package cart

import (
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/db/models"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PartyRef is a resolved buyer or supplier reference on a cart.
type PartyRef struct {
	ID   uuid.UUID      `json:"id"`
	Name string         `json:"name"`
	Role enums.UserRole `json:"role"`
}

// ItemView is the API-facing projection of a cart line item.
type ItemView struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	SKU         string          `json:"sku,omitempty"`
	Unit        string          `json:"unit,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// View is the API-facing projection of a cart. Total is recomputed on every
// read, never stored.
type View struct {
	ID       uuid.UUID       `json:"id"`
	Buyer    *PartyRef       `json:"buyer,omitempty"`
	Supplier *PartyRef       `json:"supplier,omitempty"`
	Items    []ItemView      `json:"items"`
	Total    decimal.Decimal `json:"total"`
}

// NewItemView projects a cart item into its API representation.
func NewItemView(item *models.CartItem) ItemView {
	view := ItemView{
		ID:        item.ID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice,
		LineTotal: item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
	}
	if item.Product != nil {
		view.ProductName = item.Product.Name
		view.SKU = item.Product.SKU
		view.Unit = item.Product.Unit
	}
	return view
}

// NewView projects a cart with its resolved references into the API shape.
func NewView(cart *models.Cart) View {
	view := View{
		ID:    cart.ID,
		Items: make([]ItemView, 0, len(cart.Items)),
		Total: decimal.Zero,
	}
	if cart.Buyer != nil {
		view.Buyer = &PartyRef{ID: cart.Buyer.ID, Name: cart.Buyer.Name, Role: cart.Buyer.Role}
	}
	if cart.Supplier != nil {
		view.Supplier = &PartyRef{ID: cart.Supplier.ID, Name: cart.Supplier.Name, Role: cart.Supplier.Role}
	}
	for i := range cart.Items {
		item := NewItemView(&cart.Items[i])
		view.Items = append(view.Items, item)
		view.Total = view.Total.Add(item.LineTotal)
	}
	return view
}
