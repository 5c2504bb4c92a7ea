package models

import (
	"time"

	"github.com/kendall-kelly/kendalls-studio-api/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents an item sold by the studio
type Product struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	Name              string          `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Description       string          `gorm:"type:text;not null" json:"description"`
	Price             decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock             int             `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	ImageName         *string         `json:"image_name"` // nullable, key in file storage
	ImageURL          string          `gorm:"-" json:"image_url,omitempty"`
	ProductCategoryID uint            `gorm:"not null;index" json:"product_category_id"`
	ProductCategory   ProductCategory `gorm:"foreignKey:ProductCategoryID" json:"product_category"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	DeletedAt         gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// AfterFind fills in the download path of the image
func (p *Product) AfterFind(tx *gorm.DB) error {
	if p.ImageName != nil {
		p.ImageURL = utils.GetFileURL(*p.ImageName)
	}
	return nil
}

func (p *Product) BillableID() uint          { return p.ID }
func (p *Product) BillableKind() BillableKind { return BillableProduct }
func (*Product) billable()                    {}
