package validate_test

import (
	"testing"

	"github.com/agriconnect-ug/agriconnect/pkg/validate"
)

// signupForm mirrors the shape the auth controller binds, so the rules
// exercised here are the ones the signup endpoint runs.
type signupForm struct {
	FirstName            string `json:"first_name"            validate:"required,min=2,max=50"`
	Email                string `json:"email"                 validate:"required,email"`
	Password             string `json:"password"              validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"confirmed"`
	Phone                string `json:"phone"                 validate:"nullable,min=9"`
	Role                 string `json:"role"                  validate:"required,in=farmer,buyer,admin"`
	District             string `json:"district"              validate:"required"`
}

type listingInput struct {
	Crop     string  `json:"crop"     validate:"required,min=2,max=100"`
	Category string  `json:"category" validate:"required"`
	Quality  string  `json:"quality"  validate:"nullable,in=premium,standard,fair"`
	Quantity float64 `json:"quantity" validate:"required,gt=0"`
	Price    float64 `json:"price"    validate:"required,gt=0"`
	PhotoURL string  `json:"photo_url" validate:"nullable,url"`
	District string  `json:"district" validate:"required"`
}

func TestValidSignupForm(t *testing.T) {
	errs := validate.Struct(signupForm{
		FirstName:            "Amina",
		Email:                "amina@coop.ug",
		Password:             "maizefield1",
		PasswordConfirmation: "maizefield1",
		Phone:                "",
		Role:                 "farmer",
		District:             "Mbale",
	})
	if validate.HasErrors(errs) {
		t.Errorf("valid signup should pass, got: %v", errs)
	}
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(signupForm{})
	if !validate.HasErrors(errs) {
		t.Error("empty signup should collect required errors")
	}
	for _, field := range []string{"first_name", "email", "district"} {
		if _, ok := errs[field]; !ok {
			t.Errorf("missing required error for %s", field)
		}
	}
}

func TestEmailRule(t *testing.T) {
	type in struct {
		Email string `json:"email" validate:"required,email"`
	}
	if errs := validate.Struct(in{Email: "amina-at-coop"}); errs["email"] == "" {
		t.Error("malformed address should fail the email rule")
	}
	if errs := validate.Struct(in{Email: "amina@coop.ug"}); validate.HasErrors(errs) {
		t.Errorf("well-formed address should pass, got: %v", errs)
	}
}

func TestPositiveAmounts(t *testing.T) {
	base := listingInput{
		Crop:     "Coffee",
		Category: "coffee",
		Quantity: 120,
		Price:    8500,
		District: "Mbale",
	}

	if errs := validate.Struct(base); validate.HasErrors(errs) {
		t.Errorf("expected valid listing to pass, got: %v", errs)
	}

	zeroPrice := base
	zeroPrice.Price = 0
	if errs := validate.Struct(zeroPrice); !validate.HasErrors(errs) {
		t.Error("expected zero price to fail gt=0")
	}

	negativeQty := base
	negativeQty.Quantity = -5
	if errs := validate.Struct(negativeQty); !validate.HasErrors(errs) {
		t.Error("expected negative quantity to fail gt=0")
	}
}

func TestInRule(t *testing.T) {
	type in struct {
		Role string `json:"role" validate:"required,in=farmer,buyer,admin"`
	}
	if errs := validate.Struct(in{Role: "wholesaler"}); !validate.HasErrors(errs) {
		t.Error("role outside the allowed set should fail")
	}
	if errs := validate.Struct(in{Role: "farmer"}); validate.HasErrors(errs) {
		t.Errorf("farmer should pass the in rule, got: %v", errs)
	}
}

func TestConfirmedRule(t *testing.T) {
	type in struct {
		Password             string `json:"password"              validate:"required,min=8"`
		PasswordConfirmation string `json:"password_confirmation" validate:"confirmed"`
	}
	if errs := validate.Struct(in{Password: "maizefield1", PasswordConfirmation: "cassava99"}); !validate.HasErrors(errs) {
		t.Error("mismatched confirmation should fail")
	}
	if errs := validate.Struct(in{Password: "maizefield1", PasswordConfirmation: "maizefield1"}); validate.HasErrors(errs) {
		t.Errorf("matching confirmation should pass, got: %v", errs)
	}
}

func TestNullableSkipsRules(t *testing.T) {
	type in struct {
		PhotoURL string `json:"photo_url" validate:"nullable,url"`
	}
	if errs := validate.Struct(in{PhotoURL: ""}); validate.HasErrors(errs) {
		t.Errorf("empty nullable field should skip the url rule, got: %v", errs)
	}
	if errs := validate.Struct(in{PhotoURL: "not-a-url"}); !validate.HasErrors(errs) {
		t.Error("non-empty value should still hit the url rule")
	}
}

func TestBetweenRule(t *testing.T) {
	type in struct {
		RadiusKm float64 `json:"radius_km" validate:"required,between=1,200"`
	}
	if errs := validate.Struct(in{RadiusKm: 500}); !validate.HasErrors(errs) {
		t.Error("expected radius > 200 to fail")
	}
	if errs := validate.Struct(in{RadiusKm: 25}); validate.HasErrors(errs) {
		t.Errorf("expected radius 25 to pass: %v", errs)
	}
}

func TestURLRule(t *testing.T) {
	type in struct {
		Website string `json:"website" validate:"required,url"`
	}
	if errs := validate.Struct(in{Website: "https://agriconnect.ug"}); validate.HasErrors(errs) {
		t.Errorf("https URL should pass, got: %v", errs)
	}
	if errs := validate.Struct(in{Website: "ftp://agriconnect.ug"}); !validate.HasErrors(errs) {
		t.Error("non-http scheme should fail the url rule")
	}
}

func TestMultiValueInFollowedByOtherRules(t *testing.T) {
	type in struct {
		Sort string `json:"sort" validate:"nullable,in=price_low,price_high,newest,nearest,max=20"`
	}
	if errs := validate.Struct(in{Sort: "newest"}); validate.HasErrors(errs) {
		t.Errorf("expected newest to pass: %v", errs)
	}
	if errs := validate.Struct(in{Sort: "oldest"}); !validate.HasErrors(errs) {
		t.Error("expected unknown sort key to fail")
	}
}

func TestDigitsRule(t *testing.T) {
	type in struct {
		Phone string `json:"phone" validate:"required,digits=10"`
	}
	if errs := validate.Struct(in{Phone: "0712345678"}); validate.HasErrors(errs) {
		t.Errorf("expected 10-digit phone to pass: %v", errs)
	}
	if errs := validate.Struct(in{Phone: "071234"}); !validate.HasErrors(errs) {
		t.Error("expected short phone to fail digits=10")
	}
	if errs := validate.Struct(in{Phone: "07123456ab"}); !validate.HasErrors(errs) {
		t.Error("expected non-digit phone to fail digits=10")
	}
}

func TestMessageWording(t *testing.T) {
	type in struct {
		Crop string `json:"crop" validate:"required"`
	}
	errs := validate.Struct(in{})
	if got, want := errs["crop"], "The crop field is required."; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
