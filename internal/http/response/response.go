// Package response задаёт общий JSON-конверт ответов HTTP-обработчиков.
package response

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator"
)

// Response конверт ответа. Fields заполняется только для ошибок валидации:
// имя поля и причина отказа.
type Response struct {
	Status string            `json:"status"`
	Error  string            `json:"error,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
	Data   any               `json:"data,omitempty"`
}

// ErrorResponse тип ошибки для аннотаций @Failure.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
}

// Значения поля Status.
const (
	StatusOK    = "OK"
	StatusError = "Error"
)

// OKWithData успешный ответ с данными.
func OKWithData(data any) Response {
	return Response{Status: StatusOK, Data: data}
}

// Error ответ с ошибкой.
func Error(msg string) ErrorResponse {
	return ErrorResponse{Status: StatusError, Error: msg}
}

// FieldError отказ бизнес-правила по одному полю.
func FieldError(field, reason string) Response {
	return Response{
		Status: StatusError,
		Error:  field + ": " + reason,
		Fields: map[string]string{field: reason},
	}
}

// причины по тегам validator; %s подставляется параметром тега
var reasons = map[string]string{
	"required": "is a required field",
	"email":    "must be a valid email",
	"alphanum": "can contain only numbers and letters",
	"uuid":     "can contain only uuid",
	"min":      "must be at least %s",
	"gte":      "must be at least %s",
	"max":      "must be at most %s",
	"lte":      "must be at most %s",
	"oneof":    "must be one of [%s]",
	"len":      "must be exactly %s long",
}

func reason(fe validator.FieldError) string {
	tmpl, ok := reasons[fe.ActualTag()]
	if !ok {
		return "is not valid"
	}
	if strings.Contains(tmpl, "%s") {
		return fmt.Sprintf(tmpl, fe.Param())
	}
	return tmpl
}

// ValidationError собирает нарушения тегов validate в один ответ. Error содержит
// все причины через запятую, Fields по одной на поле.
func ValidationError(errs validator.ValidationErrors) Response {
	msgs := make([]string, 0, len(errs))
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		r := reason(fe)
		msgs = append(msgs, fmt.Sprintf("field %s %s", fe.Field(), r))
		if _, seen := fields[fe.Field()]; !seen {
			fields[fe.Field()] = r
		}
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(msgs, ", "),
		Fields: fields,
	}
}
