package models

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ExportRecord is the history entry written after a document was generated
// successfully. Snapshot holds the rounded invoice as JSON; line items are
// not stored anywhere else.
type ExportRecord struct {
	ID          snowflake.ID    `gorm:"primaryKey;autoIncrement:false"`
	UserID      uint            `gorm:"index;not null"`
	Number      string          `gorm:"size:32;uniqueIndex;not null"`
	Format      string          `gorm:"size:8;not null"`
	FileName    string          `gorm:"size:128;not null"`
	ContentType string          `gorm:"size:128"`
	Size        int64
	ArchiveKey  string          `gorm:"size:512"`
	Currency    string          `gorm:"size:8"`
	ItemCount   int
	Subtotal    decimal.Decimal `gorm:"type:decimal(20,2)"`
	TaxTotal    decimal.Decimal `gorm:"type:decimal(20,2)"`
	GrandTotal  decimal.Decimal `gorm:"type:decimal(20,2)"`
	Snapshot    datatypes.JSON
	CreatedAt   time.Time `gorm:"index"`

	User User `gorm:"constraint:OnDelete:CASCADE"`
}

// TableName sets the database table name.
func (ExportRecord) TableName() string { return "export_records" }

// Archived reports whether a copy of the document can be downloaded again.
func (r *ExportRecord) Archived() bool { return r.ArchiveKey != "" }
