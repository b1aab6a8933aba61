package i18n

import (
	"errors"
	"testing"
)

func TestTranslate(t *testing.T) {
	msg, err := Translate("en", "addSuccess")
	if err != nil || msg != "Expense added" {
		t.Fatalf("got %q %v", msg, err)
	}
	msg, err = Translate("pl", "addSuccess")
	if err != nil || msg == "" {
		t.Fatalf("got %q %v", msg, err)
	}
}

func TestTranslateUnknownLocale(t *testing.T) {
	if _, err := Translate("de", "addSuccess"); !errors.Is(err, ErrUnknownLocale) {
		t.Fatalf("expected ErrUnknownLocale, got %v", err)
	}
}

func TestTranslateUnknownKey(t *testing.T) {
	if _, err := Translate("en", "nope"); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}
}

func TestLocalesHaveSameKeys(t *testing.T) {
	for key := range locales["en"] {
		if _, err := Translate("pl", key); err != nil {
			t.Fatalf("pl missing key %q", key)
		}
	}
	for key := range locales["pl"] {
		if _, err := Translate("en", key); err != nil {
			t.Fatalf("en missing key %q", key)
		}
	}
}
