// Пакет model — доменные модели riskdesk.
// Поля и JSON-имена повторяют ответы API кредитного риска без изменений
// (ID, CreatedAt, UpdatedAt с заглавной буквы, остальное в camelCase).
package model

import "time"

// Base — общие поля всех сущностей API.
type Base struct {
	// ID — числовой идентификатор записи
	ID uint `json:"ID"`
	// CreatedAt — время создания
	CreatedAt time.Time `json:"CreatedAt"`
	// UpdatedAt — время последнего изменения
	UpdatedAt time.Time `json:"UpdatedAt"`
}

// EntityID возвращает идентификатор записи.
func (b Base) EntityID() uint {
	return b.ID
}

// Customer — клиент.
type Customer struct {
	Base
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	PhoneNumber    string  `json:"phoneNumber"`
	DocumentNumber string  `json:"documentNumber"`
	DocumentTypeID uint    `json:"documentTypeId"`
	MonthlyIncome  float64 `json:"monthlyIncome"`
	CreatedByID    uint    `json:"createdById"`
	Status         bool    `json:"status"`
}

// CreditRequest — заявка на кредит с оценкой риска, рассчитанной на стороне API.
type CreditRequest struct {
	Base
	Amount          float64 `json:"amount"`
	TermMonths      int     `json:"termMonths"`
	ProductType     string  `json:"productType"`
	CreditStatusID  uint    `json:"creditStatusId"`
	RiskScore       float64 `json:"riskScore"`
	RiskCategory    string  `json:"riskCategory"`
	RiskExplanation string  `json:"riskExplanation"`
	CustomerID      uint    `json:"customerId"`
}

// CustomerAsset — имущество клиента, заявленное как обеспечение по заявке.
type CustomerAsset struct {
	Base
	CreditRequestID uint    `json:"creditRequestId"`
	CustomerID      uint    `json:"customerId"`
	AssetID         uint    `json:"assetId"`
	Description     string  `json:"description"`
	MarketValue     float64 `json:"marketValue"`
	Status          bool    `json:"status"`
}

// User — сотрудник. Пароль API не возвращает наружу.
type User struct {
	Base
	Name   string `json:"name"`
	RoleID uint   `json:"roleId"`
	Email  string `json:"email"`
	Status bool   `json:"status"`
}

// Asset — тип имущества (справочник).
type Asset struct {
	Base
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      bool   `json:"status"`
}

// CreditStatus — статус заявки (справочник).
type CreditStatus struct {
	Base
	Name   string `json:"name"`
	Status bool   `json:"status"`
}

// DocumentType — тип документа клиента (справочник).
type DocumentType struct {
	Base
	Code        string `json:"code"`
	Description string `json:"description"`
	Status      bool   `json:"status"`
}

// NoPayload — тип-заглушка для справочников, которые не изменяются через UI.
type NoPayload struct{}
