package model

// Contact is one address-book record. There is no ownership link to a User;
// any authenticated session may mutate any record.
type Contact struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}
