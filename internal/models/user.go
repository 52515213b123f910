package models

type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
)

type User struct {
	BaseModel
	Username     string   `json:"username" gorm:"type:varchar(50);uniqueIndex;not null"`
	PasswordHash string   `json:"-" gorm:"type:text;not null"`
	Email        string   `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	FullName     string   `json:"fullName" gorm:"type:varchar(100);not null"`
	Phone        string   `json:"phone" gorm:"type:varchar(20)"`
	BloodGroup   string   `json:"bloodGroup" gorm:"type:varchar(5);not null"`
	Role         UserRole `json:"role" gorm:"type:varchar(20);not null;default:'user'"`
}
