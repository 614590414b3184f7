package models

import "github.com/erp/sfa/internal/domain/sfa"

// CodeModel is one entry of a code category
type CodeModel struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"`
	Category string `gorm:"type:varchar(50);not null;uniqueIndex:idx_codes_category_code"`
	Code     string `gorm:"type:varchar(50);not null;uniqueIndex:idx_codes_category_code"`
	Name     string `gorm:"type:varchar(100);not null"`
	Sort     int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (CodeModel) TableName() string {
	return "codes"
}

// ToDomain converts the model to a domain code
func (m *CodeModel) ToDomain() sfa.Code {
	return sfa.Code{Category: m.Category, Code: m.Code, Name: m.Name, Sort: m.Sort}
}

// TeamModel is a business unit
type TeamModel struct {
	ID   string `gorm:"type:varchar(50);primaryKey"`
	Name string `gorm:"type:varchar(200);not null"`
}

// TableName returns the table name for GORM
func (TeamModel) TableName() string {
	return "teams"
}

// CustomerModel is a customer or selling partner
type CustomerModel struct {
	ID   string `gorm:"type:varchar(50);primaryKey"`
	Name string `gorm:"type:varchar(200);not null;index"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// All returns every model, in dependency order, for AutoMigrate in tests
// and local sqlite runs
func All() []any {
	return []any{
		&RevenueModel{},
		&SalesItemModel{},
		&PaymentModel{},
		&PaymentHistoryModel{},
		&CodeModel{},
		&TeamModel{},
		&CustomerModel{},
	}
}
