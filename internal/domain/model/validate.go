package model

import (
	"errors"
	"fmt"
	"regexp"
	"unicode/utf8"
)

// ErrValidation — данные формы не прошли проверку.
var ErrValidation = errors.New("ошибка валидации")

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Ограничения длины полей форм.
const (
	maxNameLen        = 54
	maxPhoneLen       = 15
	maxDocumentLen    = 20
	maxProductTypeLen = 50
	maxDescriptionLen = 100
)

// ValidationError — ошибка проверки формы с сообщением для пользователя.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is сопоставляет ошибку с ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

func checkName(name string) error {
	switch {
	case name == "":
		return invalid("El nombre es obligatorio")
	case utf8.RuneCountInString(name) > maxNameLen:
		return invalid(fmt.Sprintf("El nombre no puede superar %d caracteres", maxNameLen))
	}
	return nil
}

func checkEmail(email string) error {
	switch {
	case email == "":
		return invalid("El correo es obligatorio")
	case !emailPattern.MatchString(email):
		return invalid("El correo no es válido")
	}
	return nil
}

// Validate проверяет форму клиента.
func (f CustomerForm) Validate() error {
	if err := checkName(f.Name); err != nil {
		return err
	}
	if err := checkEmail(f.Email); err != nil {
		return err
	}
	switch {
	case f.PhoneNumber == "":
		return invalid("El teléfono es obligatorio")
	case utf8.RuneCountInString(f.PhoneNumber) > maxPhoneLen:
		return invalid(fmt.Sprintf("El teléfono no puede superar %d caracteres", maxPhoneLen))
	case f.DocumentNumber == "":
		return invalid("El número de documento es obligatorio")
	case utf8.RuneCountInString(f.DocumentNumber) > maxDocumentLen:
		return invalid(fmt.Sprintf("El número de documento no puede superar %d caracteres", maxDocumentLen))
	case f.DocumentTypeID == 0:
		return invalid("El tipo de documento es obligatorio")
	case f.MonthlyIncome < 0:
		return invalid("El ingreso mensual no puede ser negativo")
	}
	return nil
}

// Validate проверяет заданные поля обновления клиента.
func (u CustomerUpdate) Validate() error {
	if u.Name != nil {
		if err := checkName(*u.Name); err != nil {
			return err
		}
	}
	if u.Email != nil {
		if err := checkEmail(*u.Email); err != nil {
			return err
		}
	}
	if u.PhoneNumber != nil && (*u.PhoneNumber == "" || utf8.RuneCountInString(*u.PhoneNumber) > maxPhoneLen) {
		return invalid("El teléfono no es válido")
	}
	if u.DocumentNumber != nil && (*u.DocumentNumber == "" || utf8.RuneCountInString(*u.DocumentNumber) > maxDocumentLen) {
		return invalid("El número de documento no es válido")
	}
	if u.MonthlyIncome != nil && *u.MonthlyIncome < 0 {
		return invalid("El ingreso mensual no puede ser negativo")
	}
	return nil
}

func checkCreditTerms(amount float64, termMonths int, productType string) error {
	switch {
	case amount < 0:
		return invalid("El monto no puede ser negativo")
	case termMonths < 1:
		return invalid("El plazo debe ser de al menos 1 mes")
	case productType == "":
		return invalid("El tipo de producto es obligatorio")
	case utf8.RuneCountInString(productType) > maxProductTypeLen:
		return invalid(fmt.Sprintf("El tipo de producto no puede superar %d caracteres", maxProductTypeLen))
	}
	return nil
}

// Validate проверяет форму заявки.
func (f CreditRequestForm) Validate() error {
	if err := checkCreditTerms(f.Amount, f.TermMonths, f.ProductType); err != nil {
		return err
	}
	switch {
	case f.CreditStatusID == 0:
		return invalid("El estado del crédito es obligatorio")
	case f.CustomerID == 0:
		return invalid("El cliente es obligatorio")
	}
	return nil
}

// Validate проверяет заданные поля обновления заявки.
func (u CreditRequestUpdate) Validate() error {
	if u.Amount != nil && *u.Amount < 0 {
		return invalid("El monto no puede ser negativo")
	}
	if u.TermMonths != nil && *u.TermMonths < 1 {
		return invalid("El plazo debe ser de al menos 1 mes")
	}
	if u.ProductType != nil && (*u.ProductType == "" || utf8.RuneCountInString(*u.ProductType) > maxProductTypeLen) {
		return invalid("El tipo de producto no es válido")
	}
	if u.CreditStatusID != nil && *u.CreditStatusID == 0 {
		return invalid("El estado del crédito es obligatorio")
	}
	return nil
}

func checkDescription(d string) error {
	switch {
	case d == "":
		return invalid("La descripción es obligatoria")
	case utf8.RuneCountInString(d) > maxDescriptionLen:
		return invalid(fmt.Sprintf("La descripción no puede superar %d caracteres", maxDescriptionLen))
	}
	return nil
}

// Validate проверяет форму имущества.
func (f CustomerAssetForm) Validate() error {
	if err := checkDescription(f.Description); err != nil {
		return err
	}
	switch {
	case f.MarketValue < 0:
		return invalid("El valor comercial no puede ser negativo")
	case f.AssetID == 0:
		return invalid("El tipo de bien es obligatorio")
	case f.CreditRequestID == 0:
		return invalid("La solicitud de crédito es obligatoria")
	}
	return nil
}

// Validate проверяет заданные поля обновления имущества.
func (u CustomerAssetUpdate) Validate() error {
	if u.Description != nil {
		if err := checkDescription(*u.Description); err != nil {
			return err
		}
	}
	if u.MarketValue != nil && *u.MarketValue < 0 {
		return invalid("El valor comercial no puede ser negativo")
	}
	if u.AssetID != nil && *u.AssetID == 0 {
		return invalid("El tipo de bien es obligatorio")
	}
	return nil
}

// Validate проверяет форму сотрудника. Пароль обязателен при создании.
func (f UserForm) Validate() error {
	if err := checkName(f.Name); err != nil {
		return err
	}
	if err := checkEmail(f.Email); err != nil {
		return err
	}
	switch {
	case f.RoleID == 0:
		return invalid("El rol es obligatorio")
	case f.Password == "":
		return invalid("La contraseña es obligatoria")
	}
	return nil
}

// Validate проверяет заданные поля обновления сотрудника.
func (u UserUpdate) Validate() error {
	if u.Name != nil {
		if err := checkName(*u.Name); err != nil {
			return err
		}
	}
	if u.Email != nil {
		if err := checkEmail(*u.Email); err != nil {
			return err
		}
	}
	if u.RoleID != nil && *u.RoleID == 0 {
		return invalid("El rol es obligatorio")
	}
	if u.Password != nil && *u.Password == "" {
		return invalid("La contraseña no puede estar vacía")
	}
	return nil
}

// Validate — у справочников нет форм.
func (NoPayload) Validate() error {
	return nil
}
