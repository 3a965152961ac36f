package category

type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// CreateCategoryRequest payload of creation.
// swagger:model CreateCategoryRequest
type CreateCategoryRequest struct {
	Name        string `json:"name"        binding:"required,max=100" example:"Keyboards"`
	Slug        string `json:"slug"        binding:"omitempty,max=100" example:"keyboards"`
	Description string `json:"description" example:"Mechanical and membrane keyboards"`
}
