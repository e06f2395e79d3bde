package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAsUnwrapsWrappedAppError(t *testing.T) {
	base := ErrInvalidParam.WithDetail("bad json")
	err := fmt.Errorf("bind: %w", base)

	got := As(err)
	if got.Code != CodeInvalidParam || got.HTTPStatus != http.StatusBadRequest {
		t.Fatalf("unexpected %+v", got)
	}
	if ErrInvalidParam.Detail != "" {
		t.Fatalf("WithDetail must not mutate the shared error")
	}
}

func TestAsWrapsUnknownErrors(t *testing.T) {
	cause := errors.New("boom")
	got := As(cause)
	if got.HTTPStatus != http.StatusInternalServerError || !errors.Is(got, cause) {
		t.Fatalf("unexpected %+v", got)
	}
}
