package model

import "time"

type Store struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"type:varchar(60);not null" json:"name"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Address   string    `gorm:"type:varchar(400)" json:"address"`
	OwnerID   *uint     `gorm:"index" json:"owner_id"` // nullable, must reference a store_owner
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`

	Ratings []Rating `gorm:"foreignKey:StoreID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (Store) TableName() string {
	return "stores"
}
