package dto

// Request bodies for the JSON API. Validation runs in the service layer
// through go-playground/validator; "strongpwd" is registered at startup.

type RegisterDTO struct {
	Username  string `json:"username"  validate:"required,alphanum,min=3,max=20"`
	Email     string `json:"email"     validate:"required,email"`
	Password  string `json:"password"  validate:"required,strongpwd"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName"  validate:"required,max=100"`
}

type LoginDTO struct {
	Email      string `json:"email"    validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"rememberMe"`
}

type RefreshDTO struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type ForgotPasswordDTO struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordDTO struct {
	Token       string `json:"token"       validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,strongpwd"`
}

type UpdateProfileDTO struct {
	Username  string `json:"username"  validate:"omitempty,alphanum,min=3,max=20"`
	Email     string `json:"email"     validate:"omitempty,email"`
	FirstName string `json:"firstName" validate:"omitempty,max=100"`
	LastName  string `json:"lastName"  validate:"omitempty,max=100"`
}

type UpdateUserDTO struct {
	Username  string `json:"username"  validate:"omitempty,alphanum,min=3,max=20"`
	Email     string `json:"email"     validate:"omitempty,email"`
	FirstName string `json:"firstName" validate:"omitempty,max=100"`
	LastName  string `json:"lastName"  validate:"omitempty,max=100"`
	Role      string `json:"role"      validate:"omitempty,oneof=admin user"`
	IsActive  *bool  `json:"isActive"`
}

type ChangePasswordDTO struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,strongpwd"`
}

type UpdateStockDTO struct {
	Stock *int `json:"stock" validate:"required,gte=0"`
}

type CreateProductDTO struct {
	Name           string            `json:"name"        validate:"required,max=255"`
	Description    string            `json:"description" validate:"required"`
	Price          float64           `json:"price"       validate:"required,gt=0"`
	Category       string            `json:"category"    validate:"required,max=100"`
	SKU            string            `json:"sku"         validate:"required,max=100"`
	Stock          int               `json:"stock"       validate:"gte=0"`
	ImageURL       string            `json:"imageUrl"    validate:"omitempty,max=512"`
	Images         []string          `json:"images"`
	Location       string            `json:"location"    validate:"omitempty,max=255"`
	Year           int               `json:"year"        validate:"omitempty,gte=1800"`
	Specifications map[string]string `json:"specifications"`
}

type UpdateProductDTO struct {
	Name           *string           `json:"name"        validate:"omitempty,max=255"`
	Description    *string           `json:"description"`
	Price          *float64          `json:"price"       validate:"omitempty,gt=0"`
	Category       *string           `json:"category"    validate:"omitempty,max=100"`
	SKU            *string           `json:"sku"         validate:"omitempty,max=100"`
	Stock          *int              `json:"stock"       validate:"omitempty,gte=0"`
	ImageURL       *string           `json:"imageUrl"    validate:"omitempty,max=512"`
	Images         []string          `json:"images"`
	Location       *string           `json:"location"    validate:"omitempty,max=255"`
	Year           *int              `json:"year"        validate:"omitempty,gte=1800"`
	Specifications map[string]string `json:"specifications"`
	IsActive       *bool             `json:"isActive"`
}
