package transport

type RegisterRequest struct {
	FirstName   string  `json:"firstName"   validate:"required,min=2,max=50"`
	LastName    string  `json:"lastName"    validate:"required,min=2,max=50"`
	Email       string  `json:"email"       validate:"required,email"`
	Username    *string `json:"username"    validate:"omitempty,min=3,max=20,alphanum"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,e164"`
	Password    string  `json:"password"    validate:"required"`
	Role        string  `json:"role"        validate:"required"`
	DOB         *string `json:"dob"         validate:"omitempty,datetime=2006-01-02"`
	Gender      *string `json:"gender"      validate:"omitempty,oneof=male female other"`
}

type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password"   validate:"required"`
}

type VerifyOTPRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	OTP        string `json:"otp"        validate:"required,len=6"`
}

type ResendOTPRequest struct {
	Identifier string `json:"identifier" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type UpdateProfileRequest struct {
	FirstName   *string `json:"firstName"   validate:"omitempty,min=2,max=50"`
	LastName    *string `json:"lastName"    validate:"omitempty,min=2,max=50"`
	Username    *string `json:"username"    validate:"omitempty,min=3,max=20,alphanum"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,e164"`
	DOB         *string `json:"dob"         validate:"omitempty,datetime=2006-01-02"`
	Gender      *string `json:"gender"      validate:"omitempty,oneof=male female other"`
}

type UpdateStatusRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

type UserDTO struct {
	ID          string  `json:"id"`
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	Email       string  `json:"email"`
	Username    *string `json:"username,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	Role        string  `json:"role"`
	DOB         *string `json:"dob,omitempty"`
	Gender      *string `json:"gender,omitempty"`
	IsActive    bool    `json:"isActive"`
	IsVerified  bool    `json:"isVerified"`
	CreatedAt   string  `json:"createdAt"`
}

type AuthResponse struct {
	AccessToken  string  `json:"accessToken"`
	RefreshToken string  `json:"refreshToken"`
	User         UserDTO `json:"user"`
	ExpiresIn    int64   `json:"expiresIn"`
}

type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

type UserListResponse struct {
	Users  []UserDTO `json:"users"`
	Total  int64     `json:"total"`
	Limit  int       `json:"limit"`
	Offset int       `json:"offset"`
}

type UserValidationResponse struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"userId"`
	Role   string `json:"role,omitempty"`
}
