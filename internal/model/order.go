package model

import "time"

// OrderStatus is the lifecycle stage of an order
type OrderStatus string

const (
	OrderPending        OrderStatus = "pending"
	OrderConfirmed      OrderStatus = "confirmed"
	OrderPreparing      OrderStatus = "preparing"
	OrderOutForDelivery OrderStatus = "out_for_delivery"
	OrderDelivered      OrderStatus = "delivered"
	OrderCancelled      OrderStatus = "cancelled"
)

// OrderItem is one line of an order
type OrderItem struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"`
}

// Order placed by a customer at a shop
type Order struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	ShopID    string      `json:"shopId"`
	Items     []OrderItem `json:"items"`
	Total     int64       `json:"total"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
}

// customer-facing labels
var userStatusText = map[OrderStatus]string{
	OrderPending:        "Waiting for restaurant",
	OrderConfirmed:      "Order confirmed",
	OrderPreparing:      "Being prepared",
	OrderOutForDelivery: "On the way",
	OrderDelivered:      "Delivered",
	OrderCancelled:      "Cancelled",
}

// back-office labels, shared by admins and superadmins
var staffStatusText = map[OrderStatus]string{
	OrderPending:        "New order",
	OrderConfirmed:      "Accepted",
	OrderPreparing:      "In kitchen",
	OrderOutForDelivery: "Dispatched",
	OrderDelivered:      "Completed",
	OrderCancelled:      "Cancelled",
}

// StatusText returns the label a viewer with the given role sees for status.
// Every known status has a label for every role; anything else is "Unknown".
func StatusText(status OrderStatus, role Role) string {
	labels := userStatusText
	if role == RoleAdmin || role == RoleSuperAdmin {
		labels = staffStatusText
	}
	if text, ok := labels[status]; ok {
		return text
	}
	return "Unknown"
}

// OrderStatuses lists every known status in lifecycle order
func OrderStatuses() []OrderStatus {
	return []OrderStatus{OrderPending, OrderConfirmed, OrderPreparing, OrderOutForDelivery, OrderDelivered, OrderCancelled}
}
