package telegram

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tgerr"
)

func TestSignUpRequired(t *testing.T) {
	base := &auth.SignUpRequired{}
	if !signUpRequired(base) {
		t.Error("bare SignUpRequired not recognized")
	}
	if !signUpRequired(fmt.Errorf("sign in: %w", base)) {
		t.Error("wrapped SignUpRequired not recognized")
	}
	if signUpRequired(errors.New("boom")) {
		t.Error("unrelated error misclassified as sign-up required")
	}
}

func TestClassify(t *testing.T) {
	var terr *Error

	err := classify(tgerr.New(400, "PHONE_CODE_INVALID"))
	if !errors.As(err, &terr) || terr.Kind != KindPhoneCodeInvalid {
		t.Errorf("PHONE_CODE_INVALID classified as %v", err)
	}

	err = classify(auth.ErrPasswordAuthNeeded)
	if !errors.As(err, &terr) || terr.Kind != KindSessionPasswordNeeded {
		t.Errorf("password-needed classified as %v", err)
	}

	plain := errors.New("wire broke")
	if got := classify(plain); got != plain {
		t.Errorf("unrecognized error rewritten to %v", got)
	}

	if classify(nil) != nil {
		t.Error("nil error classified as non-nil")
	}
}
