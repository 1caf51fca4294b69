package domain

import "time"

// Membership — уровень лояльности клиента.
type Membership string

const (
	// MembershipBronze — уровень по умолчанию для новых клиентов.
	MembershipBronze Membership = "B"
	// MembershipSilver — промежуточный уровень.
	MembershipSilver Membership = "S"
	// MembershipGold — максимальный уровень.
	MembershipGold Membership = "G"
)

// Customer — покупатель.
type Customer struct {
	ID         int64
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	BirthDate  *time.Time
	Membership Membership
}

// NamedCustomer — клиент с вычисленным полным именем (аннотация CONCAT).
type NamedCustomer struct {
	Customer
	FullName string
}

// CustomerOrderCount — клиент с количеством его заказов (аннотация COUNT).
type CustomerOrderCount struct {
	Customer
	OrdersCount int64
}
