package dto

import "time"

// AccountOutput is one entry of the admin account listing. PasswordHash and
// CVC are only populated when sensitive output is enabled.
type AccountOutput struct {
	Username         string    `json:"username"`
	Role             string    `json:"role"`
	FirstName        string    `json:"first_name,omitempty"`
	LastName         string    `json:"last_name,omitempty"`
	IDNumber         string    `json:"id_number,omitempty"`
	CreditCardNumber string    `json:"credit_card_number,omitempty"`
	ValidDate        string    `json:"valid_date,omitempty"`
	CVC              string    `json:"cvc,omitempty"`
	PasswordHash     string    `json:"password,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
