package users

import (
	"time"

	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/auth"
)

// SocialMedia holds optional social handles.
type SocialMedia struct {
	Instagram string `json:"instagram,omitempty" validate:"max=100"`
	Twitter   string `json:"twitter,omitempty" validate:"max=100"`
	TikTok    string `json:"tiktok,omitempty" validate:"max=100"`
}

// User is the stored account. PasswordHash and SecurityAnswerHash only ever
// hold bcrypt hashes; use Profile for anything leaving the process.
type User struct {
	ID                 string
	UserName           string
	Email              string
	PasswordHash       string
	Role               auth.Role
	SecurityQuestion   string
	SecurityAnswerHash string
	AvatarURL          string
	Birthday           *time.Time
	Bio                string
	HiddenTalents      string
	Hobbies            []string
	Interests          []string
	FavoriteFood       string
	SocialMedia        SocialMedia
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Profile is the credential-free view of a user.
type Profile struct {
	ID               string      `json:"id"`
	UserName         string      `json:"userName"`
	Email            string      `json:"email"`
	Role             auth.Role   `json:"role"`
	AvatarURL        string      `json:"avatarURL"`
	SecurityQuestion string      `json:"securityQuestion,omitempty"`
	Birthday         *time.Time  `json:"birthday,omitempty"`
	Bio              string      `json:"bio,omitempty"`
	HiddenTalents    string      `json:"hiddenTalents,omitempty"`
	Hobbies          []string    `json:"hobbies"`
	Interests        []string    `json:"interests"`
	FavoriteFood     string      `json:"favoriteFood,omitempty"`
	SocialMedia      SocialMedia `json:"socialMedia"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

func (u User) Profile() Profile {
	hobbies := u.Hobbies
	if hobbies == nil {
		hobbies = []string{}
	}
	interests := u.Interests
	if interests == nil {
		interests = []string{}
	}
	return Profile{
		ID:               u.ID,
		UserName:         u.UserName,
		Email:            u.Email,
		Role:             u.Role,
		AvatarURL:        u.AvatarURL,
		SecurityQuestion: u.SecurityQuestion,
		Birthday:         u.Birthday,
		Bio:              u.Bio,
		HiddenTalents:    u.HiddenTalents,
		Hobbies:          hobbies,
		Interests:        interests,
		FavoriteFood:     u.FavoriteFood,
		SocialMedia:      u.SocialMedia,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

// Actor returns the authorization identity of the user.
func (u User) Actor() auth.Actor {
	return auth.Actor{ID: u.ID, Role: auth.NormalizeRole(string(u.Role))}
}
