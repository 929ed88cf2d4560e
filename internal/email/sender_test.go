package email

import "testing"

func TestConfirmationURL_FillsAndEscapesPlaceholders(t *testing.T) {
	tmpl := "https://auth.example.com/auth/email-confirm?userId={userId}&token={token}"
	got := ConfirmationURL(tmpl, "user 1", "tok+en")
	want := "https://auth.example.com/auth/email-confirm?userId=user+1&token=tok%2Ben"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestConfirmationURL_NoPlaceholders(t *testing.T) {
	if got := ConfirmationURL("https://x/", "u", "t"); got != "https://x/" {
		t.Fatalf("unexpected %q", got)
	}
}
