package dto

type RegisterInput struct {
	Username string `json:"username" validate:"required,max=64,username"`
	Password string `json:"password" validate:"required,max=128"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin"`

	FirstName        string `json:"first_name" validate:"omitempty,alpha,max=64"`
	LastName         string `json:"last_name" validate:"omitempty,alpha,max=64"`
	IDNumber         string `json:"id_number" validate:"omitempty,len=9,digits"`
	CreditCardNumber string `json:"credit_card_number" validate:"omitempty,cardnumber"`
	ValidDate        string `json:"valid_date" validate:"omitempty,cardexpiry"`
	CVC              string `json:"cvc" validate:"omitempty,len=3,digits"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
