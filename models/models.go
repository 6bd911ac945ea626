package models

import "github.com/jinzhu/gorm"

// user_cults is the user's roster (joined or created cults); cult_members is
// explicit membership. They are distinct sets: creating a cult puts it in the
// creator's roster without making the creator a member.

type User struct {
	gorm.Model
	ExternalID string `gorm:"unique"`
	Username   string `gorm:"unique"`
	Name       string
	Image      string
	Bio        string
	Onboarded  bool
	Infernos   []Inferno `gorm:"foreignkey:AuthorID"`
	Cults      []*Cult   `gorm:"many2many:user_cults"`
}

type Inferno struct {
	gorm.Model
	Text     string
	AuthorID uint
	CultID   *uint
	ParentID *uint
	Children []Inferno `gorm:"foreignkey:ParentID"`
}

type Cult struct {
	gorm.Model
	ExternalID  string `gorm:"unique"`
	Username    string `gorm:"unique"`
	Name        string
	Image       string
	Bio         string
	CreatedByID uint
	Members     []*User   `gorm:"many2many:cult_members"`
	Infernos    []Inferno `gorm:"foreignkey:CultID"`
}
