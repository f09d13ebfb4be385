package mailer

import (
	"strings"
	"testing"
)

func TestAcceptLink(t *testing.T) {
	got := AcceptLink("https://app.caterkita.ph/", "tok+en/1")
	want := "https://app.caterkita.ph/invitations/accept?token=tok%2Ben%2F1"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRenderInvitationHTMLEscapesInput(t *testing.T) {
	body := renderInvitationHTML(InvitationEmail{
		ProviderName: "Lola's <Kitchen>",
		Role:         "staff",
		InviterName:  "Ana",
	}, "https://example.com/accept")

	if strings.Contains(body, "<Kitchen>") {
		t.Fatal("provider name not escaped")
	}
	if !strings.Contains(body, "Lola&#39;s &lt;Kitchen&gt;") {
		t.Fatal("expected escaped provider name in body")
	}
	if !strings.Contains(body, "https://example.com/accept") {
		t.Fatal("expected accept link in body")
	}
}
