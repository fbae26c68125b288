package handler

// Form state echoed back into templates. Errors is keyed by form field name;
// an empty map means the form validated.

type LoginForm struct {
	Username string
	Password string // never echoed back
	Errors   map[string]string
}

type ContactForm struct {
	FirstName string
	LastName  string
	Email     string
	Errors    map[string]string
}
