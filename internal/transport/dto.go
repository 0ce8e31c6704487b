package transport

type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type StoreRequest struct {
	Name string `json:"name" validate:"required"`
}

type ItemRequest struct {
	Name    string  `json:"name"     validate:"required"`
	Price   float64 `json:"price"    validate:"gte=0"`
	StoreID uint    `json:"store_id" validate:"required"`
}

// ItemUpdateRequest feeds the PUT upsert; StoreID is only needed when the
// item does not exist yet.
type ItemUpdateRequest struct {
	Name    string  `json:"name"     validate:"required"`
	Price   float64 `json:"price"    validate:"gte=0"`
	StoreID uint    `json:"store_id"`
}

type TagRequest struct {
	Name string `json:"name" validate:"required"`
}

type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
