package directory

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Department string          `json:"department,omitempty"`
	Email      string          `json:"email,omitempty"`
	Salary     decimal.Decimal `json:"salary"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}
