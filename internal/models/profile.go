package models

import "gorm.io/gorm"

// Profile is the social-graph side of a User. Every user gets exactly one,
// created together with the account at registration.
//
// Friends is a self-referential many2many. The relation is directed at the
// storage level: confirming a friendship writes both (a,b) and (b,a) rows,
// and removing one removes both. That symmetry is maintained by
// social.Manager, never assumed from the schema.
type Profile struct {
	gorm.Model
	UserID uint   `gorm:"uniqueIndex;not null"`
	Photo  string `gorm:"size:512"`

	User    User       `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Friends []*Profile `gorm:"many2many:profile_friends;"`
}
