package transport

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/Skotchmaster/zefir_shop/internal/models"
)

type ErrorResponse struct {
	Errors any `json:"errors"`
}

type RegisterRequest struct {
	Name            string `json:"name"`
	Surname         string `json:"surname"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type AuthResponse struct {
	User         UserView  `json:"user"`
	Token        string    `json:"token"`
	TokenExpires time.Time `json:"tokenExpires"`
	RefreshToken string    `json:"refreshToken"`
}

type UserView struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Surname   string    `json:"surname"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Sale      *float64  `json:"sale"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewUserView(u *models.User) UserView {
	return UserView{
		ID:        u.ID,
		Name:      u.Name,
		Surname:   u.Surname,
		Phone:     u.Phone,
		Email:     u.Email,
		Sale:      u.Sale,
		Role:      u.RoleName,
		CreatedAt: u.CreatedAt,
	}
}

func NewUserViews(users []models.User) []UserView {
	out := make([]UserView, 0, len(users))
	for i := range users {
		out = append(out, NewUserView(&users[i]))
	}
	return out
}

type ProductRequest struct {
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	CategoryName    string            `json:"categoryName"`
	Price           float64           `json:"price"`
	Characteristics map[string]string `json:"characteristics"`
}

type ProductView struct {
	ID              uint              `json:"id"`
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	CategoryName    string            `json:"categoryName"`
	Price           float64           `json:"price"`
	Characteristics map[string]string `json:"characteristics"`
	CreatedAt       time.Time         `json:"createdAt"`
}

func NewProductView(p *models.Product) ProductView {
	chars := make(map[string]string, len(p.Characteristics))
	for _, c := range p.Characteristics {
		chars[c.Key] = c.Value
	}
	return ProductView{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		CategoryName:    p.Category.Name,
		Price:           p.Price.InexactFloat64(),
		Characteristics: chars,
		CreatedAt:       p.CreatedAt,
	}
}

func NewProductViews(items []models.Product) []ProductView {
	out := make([]ProductView, 0, len(items))
	for i := range items {
		out = append(out, NewProductView(&items[i]))
	}
	return out
}

type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CategoryView struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

func NewCategoryView(c *models.Category) CategoryView {
	return CategoryView{ID: c.ID, Name: c.Name, Description: c.Description, CreatedAt: c.CreatedAt}
}

type ThematicRequest struct {
	Name       string `json:"name"`
	ProductsID []uint `json:"productsId"`
}

type ThematicView struct {
	Name     string        `json:"name"`
	Products []ProductView `json:"products"`
}

func NewThematicView(t *models.Thematic) ThematicView {
	return ThematicView{Name: t.Name, Products: NewProductViews(t.Products)}
}

type BasketRequest struct {
	ProductID uint `json:"productId"`
}

type BasketView struct {
	ID       uint          `json:"id"`
	UserID   uint          `json:"userId"`
	Products []ProductView `json:"products"`
}

func NewBasketView(b *models.Basket) BasketView {
	return BasketView{ID: b.ID, UserID: b.UserID, Products: NewProductViews(b.Products)}
}

type CreateOrderRequest struct {
	ProductsID []uint `json:"productsId"`
	Deadline   string `json:"deadline"`
}

type UpdateOrderRequest struct {
	Status *OrderStatusValue `json:"status"`
}

// UnknownStatus stands in for a status name that does not exist, so the
// service can reject it with its usual message.
const UnknownStatus = models.OrderStatus(-128)

// OrderStatusValue accepts either the numeric status or its name.
type OrderStatusValue models.OrderStatus

func (s *OrderStatusValue) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*s = OrderStatusValue(n)
		return nil
	}
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return errors.New("status must be a number or a status name")
	}
	st, ok := models.ParseOrderStatus(name)
	if !ok {
		st = UnknownStatus
	}
	*s = OrderStatusValue(st)
	return nil
}

type OrderView struct {
	ID        uint          `json:"id"`
	UserID    uint          `json:"userId"`
	Products  []ProductView `json:"products"`
	Status    string        `json:"status"`
	Deadline  string        `json:"deadline"`
	Sum       float64       `json:"sum"`
	CreatedAt time.Time     `json:"createdAt"`
}

func NewOrderView(o *models.Order) OrderView {
	return OrderView{
		ID:        o.ID,
		UserID:    o.UserID,
		Products:  NewProductViews(o.Products),
		Status:    o.Status.String(),
		Deadline:  o.Deadline.Format("2006-01-02"),
		Sum:       o.Sum.InexactFloat64(),
		CreatedAt: o.CreatedAt,
	}
}

func NewOrderViews(orders []models.Order) []OrderView {
	out := make([]OrderView, 0, len(orders))
	for i := range orders {
		out = append(out, NewOrderView(&orders[i]))
	}
	return out
}
