package models

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	Email        string `gorm:"unique;not null"          json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
}

type Store struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"unique;not null"          json:"name"`
	Tags []Tag  `gorm:"foreignKey:StoreID"       json:"-"`
}

type Item struct {
	ID      uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name    string  `gorm:"not null"                 json:"name"`
	Price   float64 `gorm:"not null"                 json:"price"`
	StoreID uint    `gorm:"index;not null"           json:"store_id"`
	Tags    []Tag   `gorm:"many2many:item_tags"      json:"-"`
}

// Tag names are unique per store, not globally.
type Tag struct {
	ID      uint   `gorm:"primaryKey;autoIncrement"                 json:"id"`
	Name    string `gorm:"not null;uniqueIndex:idx_store_tag_name"  json:"name"`
	StoreID uint   `gorm:"not null;uniqueIndex:idx_store_tag_name"  json:"store_id"`
	Items   []Item `gorm:"many2many:item_tags"                      json:"-"`
}
