package upstream

import (
	"encoding/json"
	"fmt"
)

// Kind тип ошибки upstream
type Kind string

const (
	KindTimeout   Kind = "timeout"
	KindHTTP      Kind = "http_error"
	KindTransport Kind = "transport_error"
	KindShape     Kind = "shape_error"
)

// Error ошибка вызова workflow с данными для диагностики
type Error struct {
	Kind    Kind
	Message string
	Status  int
	Body    []byte
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Timeout истек ли таймаут вызова
func (e *Error) Timeout() bool {
	return e.Kind == KindTimeout
}

// BodyValue тело ответа: разобранный JSON, либо строка, если это не JSON
func (e *Error) BodyValue() interface{} {
	return DecodeBody(e.Body)
}

// NewShapeError ответ получен, но списка прогнозов в нем нет
func NewShapeError(message string, body []byte, err error) *Error {
	return &Error{Kind: KindShape, Message: message, Body: body, Err: err}
}

// DecodeBody возвращает JSON-значение тела или исходный текст
func DecodeBody(body []byte) interface{} {
	if len(body) == 0 {
		return nil
	}
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return string(body)
	}
	return v
}
