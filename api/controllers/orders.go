package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/developersvyapar-netizen/vyaapar-backend/api/responses"
	"github.com/developersvyapar-netizen/vyaapar-backend/api/validators"
	ordersvc "github.com/developersvyapar-netizen/vyaapar-backend/internal/orders"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/enums"
	pkgerrors "github.com/developersvyapar-netizen/vyaapar-backend/pkg/errors"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/logger"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/pagination"
)

type retailerOrderRequest struct {
	SupplierID uuid.UUID                  `json:"supplier_id" validate:"required"`
	Items      []retailerOrderItemPayload `json:"items" validate:"required,min=1,dive"`
	Notes      *string                    `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type retailerOrderItemPayload struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type orderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// RetailerOrderCreate places a direct one-hop order without a cart.
func RetailerOrderCreate(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		retailerID, _, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload retailerOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]ordersvc.RetailerOrderItem, len(payload.Items))
		for i, item := range payload.Items {
			items[i] = ordersvc.RetailerOrderItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			}
		}

		order, err := svc.CreateRetailerOrder(r.Context(), retailerID, ordersvc.RetailerOrderInput{
			SupplierID: payload.SupplierID,
			Items:      items,
			Notes:      payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if logg != nil {
			ctx := logg.WithOrderNumber(r.Context(), order.OrderNumber)
			logg.Info(ctx, "retailer_order.created")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// OrderGet returns one order visible to the caller.
func OrderGet(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, role, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := pathUUID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), ordersvc.Actor{UserID: userID, Role: role}, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// OrderList returns the caller's order dashboard page.
func OrderList(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, role, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var status *enums.OrderStatus
		if raw := r.URL.Query().Get("status"); raw != "" {
			parsed, err := enums.ParseOrderStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			status = &parsed
		}

		orders, page, err := svc.List(r.Context(), ordersvc.Actor{UserID: userID, Role: role}, params, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"orders":     orders,
			"pagination": page,
		})
	}
}

// OrderUpdateStatus moves an order through its lifecycle. Admin only.
func OrderUpdateStatus(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := pathUUID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload orderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		order, err := svc.UpdateStatus(r.Context(), orderID, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

func paginationParams(r *http.Request) (pagination.Params, error) {
	page, err := validators.ParseQueryInt(r, "page", 1, 1, 1<<30)
	if err != nil {
		return pagination.Params{}, err
	}
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{Page: page, Limit: limit}, nil
}
