package entity

// PaymentMethod adalah katalog metode pembayaran (stripe, cash, transfer).
// Code dipakai buat routing ke gateway yang tepat.
type PaymentMethod struct {
	Base
	Name     string `db:"name"`
	Code     string `db:"code"`
	IsActive bool   `db:"is_active"`
}
