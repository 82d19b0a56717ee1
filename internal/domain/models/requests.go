package models

// Requests for HTML forms and JSON endpoints, bound by echo and checked by the validator.

type CredentialsRequest struct {
	Username string `form:"username" json:"username" validate:"required,max=80"`
	Password string `form:"password" json:"password" validate:"required,max=72"`
}

type TickerRequest struct {
	Ticker string `query:"ticker" form:"ticker" json:"ticker" validate:"omitempty,max=20"`
}

type ForecastRequest struct {
	Ticker string `query:"ticker" json:"ticker" validate:"required,max=20"`
}
