package models

import "time"

// User represents a registered user. Income fields are stored in minor
// units of CurrencyPref and feed the recommendation budget.
type User struct {
	ID               int64     `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	PasswordHash     string    `json:"-"` // Not serialized
	SecretKeyHash    string    `json:"-"` // Not serialized
	CurrencyPref     string    `json:"currency_pref"`
	MonthlySalary    int64     `json:"monthly_salary_cents"`
	OtherIncome      int64     `json:"other_income_cents"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
