// Package registration holds the request models for the account lifecycle
// endpoints. Validation is presence-only, mirroring the public API contract:
// a request missing any required field is rejected before any external call.
package registration

import (
	dErrors "account-gateway/pkg/domain-errors"
)

// UserRegistration registers a regular end user. Surname, Phone and School
// are optional.
type UserRegistration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
	Surname  string `json:"surname"`
	Phone    string `json:"phoneno"`
	School   string `json:"school"`
}

func (r UserRegistration) Validate() error {
	if r.Email == "" || r.Password == "" || r.Username == "" {
		return dErrors.New(dErrors.CodeBadRequest, "Please provide email, password, and username.")
	}
	return nil
}

// VendorRegistration registers a vendor. Every field is required; ProfilePic
// is a pre-uploaded media URL, not a file upload.
type VendorRegistration struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	Phone            string `json:"phoneno"`
	Surname          string `json:"surname"`
	Firstname        string `json:"firstname"`
	BusinessName     string `json:"businessname"`
	BusinessCategory string `json:"businessCategory"`
	School           string `json:"selectedSchool"`
	Address          string `json:"address"`
	ProfilePic       string `json:"profilepic"`
}

func (r VendorRegistration) Validate() error {
	required := []string{
		r.Email, r.Password, r.Phone, r.Surname, r.Firstname,
		r.BusinessName, r.BusinessCategory, r.School, r.Address, r.ProfilePic,
	}
	for _, field := range required {
		if field == "" {
			return dErrors.New(dErrors.CodeBadRequest, "Please fill in all fields for vendor registration.")
		}
	}
	return nil
}

// RiderRegistration registers a delivery rider. Every field is required.
type RiderRegistration struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phoneno"`
	Surname   string `json:"surname"`
	Firstname string `json:"firstname"`
	School    string `json:"school"`
	Address   string `json:"address"`
}

func (r RiderRegistration) Validate() error {
	required := []string{r.Email, r.Password, r.Phone, r.Surname, r.Firstname, r.School, r.Address}
	for _, field := range required {
		if field == "" {
			return dErrors.New(dErrors.CodeBadRequest, "Please fill in all fields for rider registration.")
		}
	}
	return nil
}
