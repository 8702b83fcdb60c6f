package i18n

import (
	"arrangement/internal/domain"
	"arrangement/internal/ports/output"
)

// DomainErrorMessage extracts the domain error code and resolves it to a
// user-facing message. It returns "" for errors without a code.
func DomainErrorMessage(tr output.T, locale string, err error) string {
	if err == nil {
		return ""
	}
	if code := domain.Code(err); code != "" {
		return tr.T(locale, "error."+code, nil)
	}
	return ""
}
