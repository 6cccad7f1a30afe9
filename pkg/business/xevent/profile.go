package xevent

import (
	"strings"
	"time"
)

// Profile 是用户资料。
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Bio       string    `json:"bio,omitempty"`
	Location  string    `json:"location,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Interests 返回用于兴趣匹配的小写简介文本。
func (p Profile) Interests() string {
	return strings.ToLower(p.Bio)
}
