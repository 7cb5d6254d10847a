package models

import "time"

type User struct {
	ID             int64     `db:"id" json:"id"`
	GoogleID       string    `db:"google_id" json:"google_id"`
	Email          string    `db:"email" json:"email"`
	Name           string    `db:"name" json:"name"`
	ProfilePicture string    `db:"profile_picture" json:"profile_picture"`
	Role           string    `db:"role" json:"role"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

const (
	RoleAdministrator = "administrator"
	RoleEditor        = "editor"
	RoleAuthor        = "author"
	RoleSubscriber    = "subscriber"
)

const (
	CapEditPosts     = "edit_posts"
	CapPublishPosts  = "publish_posts"
	CapManageOptions = "manage_options"
)

var roleCaps = map[string][]string{
	RoleAdministrator: {CapEditPosts, CapPublishPosts, CapManageOptions},
	RoleEditor:        {CapEditPosts, CapPublishPosts},
	RoleAuthor:        {CapEditPosts, CapPublishPosts},
	RoleSubscriber:    {},
}

func (u *User) Can(capability string) bool {
	if u == nil {
		return false
	}
	for _, c := range roleCaps[u.Role] {
		if c == capability {
			return true
		}
	}
	return false
}
