package model

// CustomerForm — данные для создания клиента.
type CustomerForm struct {
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	PhoneNumber    string  `json:"phoneNumber"`
	DocumentNumber string  `json:"documentNumber"`
	DocumentTypeID uint    `json:"documentTypeId"`
	MonthlyIncome  float64 `json:"monthlyIncome"`
	Status         bool    `json:"status"`
}

// CustomerUpdate — частичное обновление клиента (nil — поле не меняется).
type CustomerUpdate struct {
	Name           *string  `json:"name,omitempty"`
	Email          *string  `json:"email,omitempty"`
	PhoneNumber    *string  `json:"phoneNumber,omitempty"`
	DocumentNumber *string  `json:"documentNumber,omitempty"`
	DocumentTypeID *uint    `json:"documentTypeId,omitempty"`
	MonthlyIncome  *float64 `json:"monthlyIncome,omitempty"`
}

// CreditRequestForm — данные для создания заявки.
type CreditRequestForm struct {
	Amount         float64 `json:"amount"`
	TermMonths     int     `json:"termMonths"`
	ProductType    string  `json:"productType"`
	CreditStatusID uint    `json:"creditStatusId"`
	CustomerID     uint    `json:"customerId"`
}

// CreditRequestUpdate — частичное обновление заявки.
type CreditRequestUpdate struct {
	Amount         *float64 `json:"amount,omitempty"`
	TermMonths     *int     `json:"termMonths,omitempty"`
	ProductType    *string  `json:"productType,omitempty"`
	CreditStatusID *uint    `json:"creditStatusId,omitempty"`
	CustomerID     *uint    `json:"customerId,omitempty"`
}

// CustomerAssetForm — данные для добавления имущества к заявке.
type CustomerAssetForm struct {
	CreditRequestID uint    `json:"creditRequestId"`
	CustomerID      uint    `json:"customerId"`
	AssetID         uint    `json:"assetId"`
	Description     string  `json:"description"`
	MarketValue     float64 `json:"marketValue"`
}

// CustomerAssetUpdate — частичное обновление имущества.
type CustomerAssetUpdate struct {
	AssetID     *uint    `json:"assetId,omitempty"`
	Description *string  `json:"description,omitempty"`
	MarketValue *float64 `json:"marketValue,omitempty"`
}

// UserForm — данные для создания сотрудника.
type UserForm struct {
	Name     string `json:"name"`
	RoleID   uint   `json:"roleId"`
	Email    string `json:"email"`
	Password string `json:"password"` //nolint:gosec // G117: поле формы, пароль уходит в API
}

// UserUpdate — частичное обновление сотрудника.
type UserUpdate struct {
	Name     *string `json:"name,omitempty"`
	RoleID   *uint   `json:"roleId,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"` //nolint:gosec // G117: поле формы
}
