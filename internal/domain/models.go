package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// Money handles the backend's decimal fields, which arrive either as JSON
// numbers or as quoted strings ("12.50").
type Money float64

func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*m = 0
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*m = Money(v)
	return nil
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(m))
}

type UserType string

const (
	UserCustomer        UserType = "customer"
	UserRestaurantOwner UserType = "restaurant_owner"
	UserDeliveryDriver  UserType = "delivery_driver"
	UserAdmin           UserType = "admin"
)

type User struct {
	ID        int      `json:"id"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Phone     string   `json:"phone"`
	UserType  UserType `json:"user_type"`
}

type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type AuthResponse struct {
	User   User   `json:"user"`
	Tokens Tokens `json:"tokens"`
}

type Restaurant struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Slug         string  `json:"slug"`
	Description  string  `json:"description,omitempty"`
	Image        string  `json:"image,omitempty"`
	Phone        string  `json:"phone,omitempty"`
	Address      string  `json:"address,omitempty"`
	City         string  `json:"city,omitempty"`
	DeliveryFee  Money   `json:"delivery_fee"`
	MinimumOrder Money   `json:"minimum_order"`
	Rating       float64 `json:"rating,omitempty"`
	IsOpen       bool    `json:"is_open,omitempty"`
}

type MenuItem struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	Price           Money  `json:"price"`
	DiscountedPrice *Money `json:"discounted_price,omitempty"`
	Image           string `json:"image,omitempty"`
}

// UnitPrice prefers the discounted price when one is set.
func (m MenuItem) UnitPrice() Money {
	if m.DiscountedPrice != nil && *m.DiscountedPrice > 0 {
		return *m.DiscountedPrice
	}
	return m.Price
}

type CartLine struct {
	ID                  int      `json:"id"`
	MenuItem            MenuItem `json:"menu_item"`
	Quantity            int      `json:"quantity"`
	SpecialInstructions string   `json:"special_instructions,omitempty"`
	Subtotal            Money    `json:"subtotal"`
}

type Cart struct {
	ID          int         `json:"id"`
	Restaurant  *Restaurant `json:"restaurant"`
	Items       []CartLine  `json:"items"`
	TotalAmount Money       `json:"total_amount"`
	ItemsCount  int         `json:"items_count"`
}

func (c Cart) IsEmpty() bool { return c.ItemsCount == 0 }

type OrderItem struct {
	ID                  int    `json:"id"`
	MenuItemName        string `json:"menu_item_name"`
	Quantity            int    `json:"quantity"`
	Price               Money  `json:"price"`
	Subtotal            Money  `json:"subtotal"`
	SpecialInstructions string `json:"special_instructions,omitempty"`
}

type Order struct {
	ID                  int           `json:"id"`
	OrderNumber         string        `json:"order_number"`
	Status              OrderStatus   `json:"status"`
	PaymentStatus       PaymentStatus `json:"payment_status"`
	PaymentMethod       string        `json:"payment_method"`
	Restaurant          int           `json:"restaurant,omitempty"`
	RestaurantName      string        `json:"restaurant_name"`
	RestaurantImage     string        `json:"restaurant_image,omitempty"`
	RestaurantPhone     string        `json:"restaurant_phone,omitempty"`
	DriverName          string        `json:"driver_name,omitempty"`
	DriverPhone         string        `json:"driver_phone,omitempty"`
	Items               []OrderItem   `json:"items,omitempty"`
	ItemsCount          int           `json:"items_count,omitempty"`
	TotalAmount         Money         `json:"total_amount"`
	DeliveryFee         Money         `json:"delivery_fee"`
	TaxAmount           Money         `json:"tax_amount"`
	GrandTotal          Money         `json:"grand_total"`
	DeliveryAddress     string        `json:"delivery_address,omitempty"`
	DeliveryCity        string        `json:"delivery_city,omitempty"`
	SpecialInstructions string        `json:"special_instructions,omitempty"`
	CreatedAt           time.Time     `json:"created_at"`
	EstimatedDelivery   *time.Time    `json:"estimated_delivery,omitempty"`
}

type Review struct {
	ID          int       `json:"id"`
	OrderNumber string    `json:"order_number"`
	UserName    string    `json:"user_name,omitempty"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
