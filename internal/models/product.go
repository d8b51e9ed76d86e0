package models

// Product is one inventory row. Every column except ID is caller supplied and
// unconstrained: codes may repeat and numbers may be negative.
type Product struct {
	ID          uint `gorm:"primaryKey;autoIncrement"`
	Code        string
	Name        string
	Description string
	Category    string `gorm:"index"`
	Quantity    int
	UnitPrice   float64
	Location    string
	Supplier    string
}

func (Product) TableName() string {
	return "productos"
}
