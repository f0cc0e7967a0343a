package orders

import (
	"time"

	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/db/models"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PartyRef identifies one participant on an order.
type PartyRef struct {
	ID   uuid.UUID      `json:"id"`
	Name string         `json:"name"`
	Role enums.UserRole `json:"role"`
}

// LineView is the API-facing projection of an order line.
type LineView struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	SKU         string          `json:"sku,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

// View is the full API-facing projection of an order.
type View struct {
	ID          uuid.UUID         `json:"id"`
	OrderNumber string            `json:"order_number"`
	Status      enums.OrderStatus `json:"status"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	Notes       *string           `json:"notes,omitempty"`
	Buyer       *PartyRef         `json:"buyer,omitempty"`
	Supplier    *PartyRef         `json:"supplier,omitempty"`
	Salesperson *PartyRef         `json:"salesperson,omitempty"`
	Lines       []LineView        `json:"lines"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Summary is the condensed listing row for dashboards.
type Summary struct {
	ID           uuid.UUID         `json:"id"`
	OrderNumber  string            `json:"order_number"`
	Status       enums.OrderStatus `json:"status"`
	TotalAmount  decimal.Decimal   `json:"total_amount"`
	BuyerName    string            `json:"buyer_name,omitempty"`
	SupplierName string            `json:"supplier_name,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// RetailerOrderItem is one requested product on a direct retailer order.
type RetailerOrderItem struct {
	ProductID uuid.UUID
	Quantity  int
}

// RetailerOrderInput carries a direct retailer order request.
type RetailerOrderInput struct {
	SupplierID uuid.UUID
	Items      []RetailerOrderItem
	Notes      *string
}

func partyRef(user *models.User) *PartyRef {
	if user == nil {
		return nil
	}
	return &PartyRef{ID: user.ID, Name: user.Name, Role: user.Role}
}

// NewView projects an order with its resolved associations into the API shape.
func NewView(order *models.Order) View {
	view := View{
		ID:          order.ID,
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		Notes:       order.Notes,
		Buyer:       partyRef(order.Buyer),
		Supplier:    partyRef(order.Supplier),
		Salesperson: partyRef(order.Salesperson),
		Lines:       make([]LineView, 0, len(order.Lines)),
		CreatedAt:   order.CreatedAt,
	}
	for i := range order.Lines {
		line := &order.Lines[i]
		lineView := LineView{
			ID:         line.ID,
			ProductID:  line.ProductID,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			TotalPrice: line.TotalPrice,
		}
		if line.Product != nil {
			lineView.ProductName = line.Product.Name
			lineView.SKU = line.Product.SKU
		}
		view.Lines = append(view.Lines, lineView)
	}
	return view
}

// NewSummary projects an order into its listing row.
func NewSummary(order *models.Order) Summary {
	summary := Summary{
		ID:          order.ID,
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		CreatedAt:   order.CreatedAt,
	}
	if order.Buyer != nil {
		summary.BuyerName = order.Buyer.Name
	}
	if order.Supplier != nil {
		summary.SupplierName = order.Supplier.Name
	}
	return summary
}
