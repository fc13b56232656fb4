package resources

import (
	"github.com/agriconnect-ug/agriconnect/app/models"
	"github.com/agriconnect-ug/agriconnect/pkg/resource"
)

// UserResource renders an account for the admin panel. The password hash
// never leaves the model; everything else an operator needs is here.
type UserResource struct{ resource.Base }

func (r *UserResource) ToArray(v interface{}) resource.Map {
	u := v.(models.User)
	return resource.Map{
		"id":         u.ID,
		"name":       u.FullName(),
		"email":      u.Email,
		"phone":      u.Phone,
		"role":       u.Role,
		"district":   u.District,
		"language":   u.Language,
		"verified":   u.Verified(),
		"created_at": u.CreatedAt,
	}
}
