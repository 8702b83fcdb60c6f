package cli

import (
	"errors"
	"fmt"

	"arrangement/internal/domain/validation"
	"arrangement/internal/infrastructure/arrangementsvc"
	"arrangement/internal/infrastructure/i18n"
	"arrangement/internal/remotedata"
)

// notify prints err in the configured locale. Form errors are listed per
// field; everything else becomes a single line.
func (h *Handler) notify(err error) {
	h.log.Debug().Err(err).Msg("command failed")

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		fmt.Fprintln(h.errOut, h.t("error.validation", nil))
		for _, e := range verrs {
			fmt.Fprintf(h.errOut, "  %s\n", e.Error())
		}
		return
	}
	var sc remotedata.StatusCoder
	if errors.As(err, &sc) && arrangementsvc.NeedsToAuthenticate(sc.StatusCode()) {
		fmt.Fprintln(h.errOut, h.t("error.login_required", nil))
		return
	}
	if msg := i18n.DomainErrorMessage(h.tr, h.locale, err); msg != "" {
		fmt.Fprintln(h.errOut, msg)
		return
	}
	_, msg := remotedata.Classify(err)
	if msg == remotedata.DefaultUserMessage {
		msg = h.t("error.generic", nil)
	}
	fmt.Fprintln(h.errOut, msg)
}
