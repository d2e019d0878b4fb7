package model

// Tag — глобальное имя тега, общее для всех пользователей и документов.
type Tag struct {
	Name        string `gorm:"primaryKey;size:255"`
	CreatedDate string `gorm:"not null;size:32"`
	UpdatedDate string `gorm:"not null;size:32"`
}

func (Tag) TableName() string { return "tags" }

// DocumentTag — связь тега с документом.
type DocumentTag struct {
	DocumentID  string `gorm:"primaryKey;size:36"`
	TagName     string `gorm:"primaryKey;size:255"`
	CreatedDate string `gorm:"not null;size:32"`
	UpdatedDate string `gorm:"not null;size:32"`
}

func (DocumentTag) TableName() string { return "document_tags" }

// UserTag — связь тега с пользователем (словарь тегов пользователя).
type UserTag struct {
	UserID      string `gorm:"primaryKey;size:255"`
	TagName     string `gorm:"primaryKey;size:255"`
	CreatedDate string `gorm:"not null;size:32"`
	UpdatedDate string `gorm:"not null;size:32"`
}

func (UserTag) TableName() string { return "user_tags" }
