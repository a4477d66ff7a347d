package httperr

import "errors"

type BusinessError struct {
	Code    string
	Details map[string]any
}

func (e BusinessError) Error() string {
	return e.Code
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

// ErrPolicy carrega contexto para o caller (ex: horas restantes
// da janela de cancelamento).
func ErrPolicy(code string, details map[string]any) error {
	return BusinessError{Code: code, Details: details}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

func AsBusiness(err error) (BusinessError, bool) {
	var be BusinessError
	ok := errors.As(err, &be)
	return be, ok
}
